package response

import "time"

type SubmitSiteResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	SubmissionID string `json:"submission_id"`
}

// SiteStatusResponse is a DTO for site status, mirroring entity.SiteStatus.
type SiteStatusResponse struct {
	Website       string     `json:"website"`
	CurrentStatus string     `json:"current_status"` // "pending", "completed", "failed", "not_found"
	LastCrawledAt *time.Time `json:"last_crawled_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

// ResultRow is one aggregate verdict row. Rows are emitted sorted
// descending by sample size.
type ResultRow struct {
	Website    string  `json:"website"`
	Similarity float64 `json:"similarity"`
	SampleSize int     `json:"sample_size"`
	CMP        string  `json:"cmp"`
}

type ResultsResponse struct {
	Results []ResultRow `json:"results"`
}
