package usecase

import (
	"strings"

	"github.com/queerlil/handles"
)

// ExtractMention returns the facet mentioning target. Only the first feature
// seen across all facets is considered: if it is anything other than a
// mention of target, the scan stops without a match.
func ExtractMention(facets []handles.Facet, target string) (handles.Facet, bool) {
	for _, facet := range facets {
		for _, feature := range facet.Features {
			if feature.Type != handles.MentionFeature {
				return handles.Facet{}, false
			}
			if feature.DID != target {
				return handles.Facet{}, false
			}
			return facet, true
		}
	}
	return handles.Facet{}, false
}

// StripMention cuts the facet's byte range out of text and trims the rest.
func StripMention(text string, mention handles.Facet) string {
	start := clamp(mention.Index.ByteStart, 0, len(text))
	end := clamp(mention.Index.ByteEnd, start, len(text))
	return strings.TrimSpace(text[:start] + text[end:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
