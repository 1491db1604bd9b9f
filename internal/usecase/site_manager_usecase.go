package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/consent-crawler/internal/entity"
	"github.com/user/consent-crawler/internal/repository"
	"github.com/user/consent-crawler/pkg/utils"
)

var (
	// ErrSiteRecentlyClassified means the website was classified recently and
	// force was false.
	ErrSiteRecentlyClassified = errors.New("website has been classified recently and force is false")
)

const deduplicationExpiry = 48 * time.Hour

// SiteManager defines the interface for submitting websites and reading
// back verdicts.
type SiteManager interface {
	Submit(ctx context.Context, website string, force bool) (string, error)
	GetStatus(ctx context.Context, website string) (*entity.SiteStatus, error)
	ListResults(ctx context.Context, limit int) ([]entity.AggregateResult, error)
}

type siteManagerUseCase struct {
	visitedRepo repository.VisitedRepository
	queueRepo   repository.QueueRepository
	resultRepo  repository.ResultRepository
	failedRepo  repository.FailedSiteRepository
}

// NewSiteManager creates a new SiteManager use case.
func NewSiteManager(
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	resultRepo repository.ResultRepository,
	failedRepo repository.FailedSiteRepository,
) SiteManager {
	return &siteManagerUseCase{
		visitedRepo: visitedRepo,
		queueRepo:   queueRepo,
		resultRepo:  resultRepo,
		failedRepo:  failedRepo,
	}
}

func (uc *siteManagerUseCase) Submit(ctx context.Context, website string, force bool) (string, error) {
	submissionID := utils.HashURL(website)

	if force {
		if err := uc.visitedRepo.RemoveVisited(ctx, website); err != nil {
			slog.Warn("Failed to remove visited key for forced run", "website", website, "error", err)
		}
	} else {
		isVisited, err := uc.visitedRepo.IsVisited(ctx, website)
		if err != nil {
			return "", err
		}
		if isVisited {
			return submissionID, ErrSiteRecentlyClassified
		}
	}

	if err := uc.queueRepo.Push(ctx, website); err != nil {
		return "", err
	}

	if err := uc.visitedRepo.MarkVisited(ctx, website, deduplicationExpiry); err != nil {
		// Non-critical: the site is queued, it might just be queued twice.
		slog.Error("Failed to mark website as visited after queueing", "website", website, "error", err)
	}

	return submissionID, nil
}

func (uc *siteManagerUseCase) GetStatus(ctx context.Context, website string) (*entity.SiteStatus, error) {
	result, err := uc.resultRepo.FindByWebsite(ctx, website)
	if err != nil {
		return nil, err
	}
	if result != nil {
		crawledAt := result.CrawledAt
		return &entity.SiteStatus{
			Website:       website,
			CurrentStatus: "completed",
			LastCrawledAt: &crawledAt,
		}, nil
	}

	failed, err := uc.failedRepo.FindByWebsite(ctx, website)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		attemptedAt := failed.LastAttemptAt
		return &entity.SiteStatus{
			Website:       website,
			CurrentStatus: "failed",
			LastCrawledAt: &attemptedAt,
			FailureReason: failed.FailureReason,
		}, nil
	}

	isVisited, err := uc.visitedRepo.IsVisited(ctx, website)
	if err != nil {
		return nil, err
	}
	if isVisited {
		return &entity.SiteStatus{Website: website, CurrentStatus: "pending"}, nil
	}
	return &entity.SiteStatus{Website: website, CurrentStatus: "not_found"}, nil
}

func (uc *siteManagerUseCase) ListResults(ctx context.Context, limit int) ([]entity.AggregateResult, error) {
	return uc.resultRepo.List(ctx, limit)
}
