package leads

import "github.com/sahilm/fuzzy"

type poolSource []Lead

func (s poolSource) String(i int) string { return s[i].Name }
func (s poolSource) Len() int            { return len(s) }

// Search fuzzy-matches the query against lead names, best match first.
func Search(pool []Lead, query string) []Lead {
	matches := fuzzy.FindFrom(query, poolSource(pool))
	results := make([]Lead, 0, len(matches))
	for _, match := range matches {
		results = append(results, pool[match.Index])
	}
	return results
}
