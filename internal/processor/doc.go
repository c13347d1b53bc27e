// Package processor turns the configured flags into a running batch. It
// builds the fetcher, page cache, enrichment providers and batch driver,
// prompts for missing input, and writes the Anki import file together
// with the list of words that were not found.
package processor
