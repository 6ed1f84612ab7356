package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CulturalCacheEntry is the Redis-stored cache value for one normalized
// Cultural-Graph request. RequestHash is the key material; ProjectID is an
// association only and never part of the key. Entries are read-only after
// creation and simply age out: lookup ignores anything older than the TTL
// even if Redis has not evicted it yet.
type CulturalCacheEntry struct {
	RequestHash string          `json:"request_hash"`
	ProjectID   uuid.UUID       `json:"project_id"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}
