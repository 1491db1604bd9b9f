package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/consent-crawler/internal/entity"
)

// ResultRepoImpl provides a concrete implementation for the ResultRepository
// interface using PostgreSQL.
type ResultRepoImpl struct {
	db *pgxpool.Pool
}

// NewResultRepo creates a new instance of ResultRepoImpl.
func NewResultRepo(db *pgxpool.Pool) *ResultRepoImpl {
	return &ResultRepoImpl{db: db}
}

// Save stores or updates the aggregate result for a website.
func (r *ResultRepoImpl) Save(ctx context.Context, result *entity.AggregateResult) error {
	query := `
		INSERT INTO aggregate_results (website, similarity, sample_size, cmp, crawl_run_id, crawled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (website) DO UPDATE SET
			similarity = EXCLUDED.similarity,
			sample_size = EXCLUDED.sample_size,
			cmp = EXCLUDED.cmp,
			crawl_run_id = EXCLUDED.crawl_run_id,
			crawled_at = EXCLUDED.crawled_at;
	`
	_, err := r.db.Exec(ctx, query,
		result.Website,
		result.Similarity,
		result.SampleSize,
		result.CMP.String(),
		result.CrawlRunID,
		result.CrawledAt,
	)
	return err
}

// FindByWebsite retrieves a website's aggregate result.
func (r *ResultRepoImpl) FindByWebsite(ctx context.Context, website string) (*entity.AggregateResult, error) {
	query := `
		SELECT website, similarity, sample_size, cmp, crawl_run_id, crawled_at
		FROM aggregate_results
		WHERE website = $1;
	`
	row := r.db.QueryRow(ctx, query, website)

	var result entity.AggregateResult
	var cmpName string
	err := row.Scan(
		&result.Website,
		&result.Similarity,
		&result.SampleSize,
		&cmpName,
		&result.CrawlRunID,
		&result.CrawledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	result.CMP = entity.CMPName(cmpName)
	return &result, nil
}

// List returns aggregate results ordered by sample size descending, the
// confidence ordering the reporting layer expects.
func (r *ResultRepoImpl) List(ctx context.Context, limit int) ([]entity.AggregateResult, error) {
	query := `
		SELECT website, similarity, sample_size, cmp, crawl_run_id, crawled_at
		FROM aggregate_results
		ORDER BY sample_size DESC, website ASC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []entity.AggregateResult
	for rows.Next() {
		var result entity.AggregateResult
		var cmpName string
		if err := rows.Scan(
			&result.Website,
			&result.Similarity,
			&result.SampleSize,
			&cmpName,
			&result.CrawlRunID,
			&result.CrawledAt,
		); err != nil {
			return nil, err
		}
		result.CMP = entity.CMPName(cmpName)
		results = append(results, result)
	}
	return results, rows.Err()
}
