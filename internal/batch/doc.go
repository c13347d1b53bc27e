// Package batch resolves a list of words to flashcard lines.
//
// Each word is looked up on the primary dictionary variant and, when the
// page has no headword, once more on the secondary variant. Sequential
// note ids are consumed only by resolved words, in input order.
package batch
