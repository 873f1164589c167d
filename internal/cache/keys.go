package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Key prefixes discriminate layer semantics so a digest is never reused
// across maps.
const (
	prefixFilters   = "flt:"
	prefixEmbedding = "emb:"
	prefixResults   = "res:"
)

// KV is a single filter pair used in canonical key construction.
type KV struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

type keyPayload struct {
	Query   string `json:"query"`
	Filters []KV   `json:"filters,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

// digest produces an MD5 hexdigest over the canonical JSON of the payload.
// Filter pairs are sorted so map iteration order never leaks into keys.
func digest(p keyPayload) string {
	p.Query = strings.ToLower(strings.TrimSpace(p.Query))
	sort.Slice(p.Filters, func(i, j int) bool {
		if p.Filters[i].Key != p.Filters[j].Key {
			return p.Filters[i].Key < p.Filters[j].Key
		}
		return p.Filters[i].Value < p.Filters[j].Value
	})

	// Marshal of this struct cannot fail
	raw, _ := json.Marshal(p)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// FiltersKey returns the cache key for a query's parsed filters.
func FiltersKey(query string) string {
	return prefixFilters + digest(keyPayload{Query: query})
}

// EmbeddingKey returns the cache key for a query embedding. The enriched
// text is the key input, so facet changes produce distinct entries.
func EmbeddingKey(enrichedText string) string {
	return prefixEmbedding + digest(keyPayload{Query: enrichedText})
}

// ResultsKey returns the cache key for a search result list. The user id
// participates because favorite and profile boosts are per-user.
func ResultsKey(query string, filters []KV, userID string) string {
	return prefixResults + digest(keyPayload{Query: query, Filters: filters, UserID: userID})
}
