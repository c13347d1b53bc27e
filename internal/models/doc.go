// Package models lists the chat models that can be used for
// highlighting and translation with the configured API keys.
package models
