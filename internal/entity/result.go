package entity

import "time"

// ClickstreamResult is the reduction of one clickstream's paired artifacts.
type ClickstreamResult struct {
	ClickstreamID string
	Similarity    float64
	TotalActions  int
}

// AggregateResult is the per-website verdict. SampleSize is the sum of
// comparable actions over all clickstreams and doubles as the confidence
// ordering key. Websites with zero comparable actions are never emitted.
type AggregateResult struct {
	Website    string
	Similarity float64
	SampleSize int
	CMP        CMPName
	CrawlRunID string
	CrawledAt  time.Time
}

// SiteStatus reports where a submitted website currently is in the pipeline.
type SiteStatus struct {
	Website       string
	CurrentStatus string // "pending", "crawling", "completed", "failed", "not_found"
	LastCrawledAt *time.Time
	FailureReason string
}

// FailedSite mirrors the `failed_sites` PostgreSQL table schema. A site
// lands here on soft failures (no consent cookie, category conflict, absent
// consent API, navigation errors); retry policy is left to operators.
type FailedSite struct {
	ID            int64
	Website       string
	FailureReason string
	LastAttemptAt time.Time
	AttemptCount  int
}
