// Package reqhash derives the stable cache key for Cultural-Graph requests.
//
// The key is a pure function of the request parameters: same logical input,
// same key, across process restarts. Domain and target lists are sorted
// before hashing so two requests that list the same multiset in different
// order share one cache entry.
package reqhash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/bytedance/sonic"
)

type keyMaterial struct {
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Domains     []string `json:"cultural_domains"`
	GeoTargets  []string `json:"geographical_targets"`
}

// Key hashes the ordered tuple (description, industry-or-empty, sorted
// domains, sorted targets) to a 64-char hex string.
func Key(description, industry string, domains, geoTargets []string) string {
	material := keyMaterial{
		Description: description,
		Industry:    industry,
		Domains:     sortedCopy(domains),
		GeoTargets:  sortedCopy(geoTargets),
	}

	// A fixed struct marshals with deterministic field order.
	b, _ := sonic.Marshal(material)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
