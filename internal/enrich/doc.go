// Package enrich provides the optional, best-effort card enrichments:
// highlighting the headword inside example sentences and translating the
// headword. Remote providers (OpenAI, Gemini) sit behind a circuit
// breaker, and every failure degrades to the unmodified text.
package enrich
