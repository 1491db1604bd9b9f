package repository

import (
	"context"

	"github.com/user/consent-crawler/internal/entity"
)

// ResultRepository persists per-website aggregate verdicts.
type ResultRepository interface {
	// Save stores or updates the aggregate result for a website.
	Save(ctx context.Context, result *entity.AggregateResult) error
	// FindByWebsite retrieves a website's aggregate result, if any.
	FindByWebsite(ctx context.Context, website string) (*entity.AggregateResult, error)
	// List returns all aggregate results ordered by sample size descending.
	List(ctx context.Context, limit int) ([]entity.AggregateResult, error)
}

// FailedSiteRepository records websites whose classification soft-failed.
type FailedSiteRepository interface {
	// SaveOrUpdate creates or updates a failed-site record, bumping its
	// attempt count.
	SaveOrUpdate(ctx context.Context, site *entity.FailedSite) error
	// Delete removes a website's failure record after a later success.
	Delete(ctx context.Context, website string) error
	// FindByWebsite retrieves a website's failure record, if any.
	FindByWebsite(ctx context.Context, website string) (*entity.FailedSite, error)
}
