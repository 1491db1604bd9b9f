package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/consent-crawler/internal/entity"
)

// FailedSiteRepoImpl provides a concrete implementation for the
// FailedSiteRepository interface using PostgreSQL.
type FailedSiteRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedSiteRepo creates a new instance of FailedSiteRepoImpl.
func NewFailedSiteRepo(db *pgxpool.Pool) *FailedSiteRepoImpl {
	return &FailedSiteRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed website, bumping
// the attempt count on conflict. No retry is scheduled here; retry policy
// belongs to whoever drains this table.
func (r *FailedSiteRepoImpl) SaveOrUpdate(ctx context.Context, site *entity.FailedSite) error {
	query := `
		INSERT INTO failed_sites (website, failure_reason, last_attempt_at, attempt_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (website) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			last_attempt_at = EXCLUDED.last_attempt_at,
			attempt_count = failed_sites.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query, site.Website, site.FailureReason, site.LastAttemptAt)
	return err
}

// Delete removes a website's failure record after a later success.
func (r *FailedSiteRepoImpl) Delete(ctx context.Context, website string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM failed_sites WHERE website = $1;`, website)
	return err
}

// FindByWebsite retrieves a website's failure record, if any.
func (r *FailedSiteRepoImpl) FindByWebsite(ctx context.Context, website string) (*entity.FailedSite, error) {
	query := `
		SELECT id, website, failure_reason, last_attempt_at, attempt_count
		FROM failed_sites
		WHERE website = $1;
	`
	row := r.db.QueryRow(ctx, query, website)

	var site entity.FailedSite
	err := row.Scan(&site.ID, &site.Website, &site.FailureReason, &site.LastAttemptAt, &site.AttemptCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}
