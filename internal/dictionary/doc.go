// Package dictionary turns a Cambridge Dictionary entry page into a
// LexicalRecord. The extraction algorithm is written against the small
// Node query interface, backed by goquery.
package dictionary
