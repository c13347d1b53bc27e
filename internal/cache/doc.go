// Package cache keeps fetched dictionary pages in a SQLite database so
// repeated runs over the same words do not hit the network again.
package cache
