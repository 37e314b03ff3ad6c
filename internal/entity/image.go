package entity

import "time"

type RenderResult struct {
	Bytes    []byte
	MimeType string
	Format   ImageFormat
}

// CacheEntry is published once and never modified afterwards.
type CacheEntry struct {
	RenderResult
	ExpiresAt time.Time
}

type CacheStatus string

const (
	CacheHit    CacheStatus = "HIT"
	CacheMiss   CacheStatus = "MISS"
	CacheBypass CacheStatus = "BYPASS"
)

type RenderResponse struct {
	RenderResult
	ClientCacheMinutes int
	Cache              CacheStatus
}

// RenderEvent is published for every render that actually ran the pipeline.
type RenderEvent struct {
	Profile     string    `json:"profile"`
	Fingerprint string    `json:"fingerprint"`
	MimeType    string    `json:"mime_type"`
	Bytes       int       `json:"bytes"`
	DurationMS  int64     `json:"duration_ms"`
	At          time.Time `json:"at"`
}

// WarmupRequest asks the service to pre-render a query into the cache.
type WarmupRequest struct {
	Profile string `json:"profile"`
	Query   string `json:"query"`
}
