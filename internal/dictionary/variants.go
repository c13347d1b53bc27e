package dictionary

import (
	"net/url"
	"strings"
)

// DefaultSite is the dictionary host
const DefaultSite = "https://dictionary.cambridge.org"

// Dictionary variants in lookup order
const (
	VariantLearner = "learner-english"
	VariantEnglish = "english"
)

// Variants lists the variants tried for each word, primary first
var Variants = []string{VariantLearner, VariantEnglish}

// EntryURL builds the entry page URL of word in the given variant:
// <site>/dictionary/<variant>/<escaped word>
func EntryURL(site, variant, word string) string {
	site = strings.TrimRight(site, "/")
	if site == "" {
		site = DefaultSite
	}
	return site + "/dictionary/" + variant + "/" + url.PathEscape(word)
}
