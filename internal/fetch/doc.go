// Package fetch downloads dictionary pages over HTTP with a browser-like
// User-Agent, a per-attempt timeout and a bounded exponential retry policy
// for transient server errors.
package fetch
