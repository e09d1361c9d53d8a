// Package retriever turns a user query into a ranked, diverse set of
// knowledge-base passages and assembles them into a bounded context string.
package retriever

import (
	"sort"
	"strings"
)

// EnhanceQuery appends expansion terms for every table keyword found in the
// query, so the embedding captures neighboring concepts. The table comes from
// configuration (config.RetrievalConfig.Expansions). Matching is by substring
// on the lowercased query, so "401k rollover" matches a "401k" entry. The
// original query text always comes first and is never altered;
// already-present terms are not duplicated. A nil or empty table returns the
// query unchanged.
func EnhanceQuery(query string, expansions map[string][]string) string {
	lower := strings.ToLower(query)
	var extra []string
	for term, related := range expansions {
		if !strings.Contains(lower, term) {
			continue
		}
		for _, exp := range related {
			if !strings.Contains(lower, exp) && !containsFold(extra, exp) {
				extra = append(extra, exp)
			}
		}
	}
	if len(extra) == 0 {
		return query
	}
	// Map iteration order is random; sort for a stable embedding input.
	sort.Strings(extra)
	return query + " " + strings.Join(extra, " ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
