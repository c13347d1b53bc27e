// Package anki turns lexical records into tab-separated Anki note lines
// and writes them in the plain-text import format.
package anki
