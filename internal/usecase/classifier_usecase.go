package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/consent-crawler/internal/analysis"
	"github.com/user/consent-crawler/internal/clickstream"
	"github.com/user/consent-crawler/internal/cmp"
	"github.com/user/consent-crawler/internal/consent"
	"github.com/user/consent-crawler/internal/entity"
	"github.com/user/consent-crawler/internal/repository"
	"github.com/user/consent-crawler/pkg/metrics"
	"github.com/user/consent-crawler/pkg/utils"
)

// Classifier defines the interface for the core classification worker.
type Classifier interface {
	// ProcessNextSite pops one website from the queue and classifies it.
	// An empty queue is a normal state, not an error.
	ProcessNextSite(ctx context.Context) error
}

type classifierUseCase struct {
	queueRepo  repository.QueueRepository
	resultRepo repository.ResultRepository
	failedRepo repository.FailedSiteRepository
	sessions   repository.SessionFactory
	runner     *clickstream.Runner

	numClickstreams int
	settle          time.Duration
	reduceOpts      analysis.Options
}

// NewClassifier creates a new instance of the classifier use case.
func NewClassifier(
	queueRepo repository.QueueRepository,
	resultRepo repository.ResultRepository,
	failedRepo repository.FailedSiteRepository,
	sessions repository.SessionFactory,
	runner *clickstream.Runner,
	numClickstreams int,
	settle time.Duration,
	reduceOpts analysis.Options,
) Classifier {
	return &classifierUseCase{
		queueRepo:       queueRepo,
		resultRepo:      resultRepo,
		failedRepo:      failedRepo,
		sessions:        sessions,
		runner:          runner,
		numClickstreams: numClickstreams,
		settle:          settle,
		reduceOpts:      reduceOpts,
	}
}

func (uc *classifierUseCase) ProcessNextSite(ctx context.Context) error {
	website, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to pop website from queue: %w", err)
	}

	slog.Info("Classifying website", "website", website)
	startTime := time.Now()

	result, runErr := uc.classify(ctx, website)

	duration := time.Since(startTime)
	metrics.ClassifyDuration.Observe(duration.Seconds())

	if runErr != nil {
		slog.Error("Classification failed", "website", website, "error", runErr)
		return uc.handleFailure(ctx, website, runErr)
	}

	slog.Info("Classification complete",
		"website", website,
		"similarity", result.Similarity,
		"sample_size", result.SampleSize,
		"cmp", result.CMP.String(),
		"duration_ms", duration.Milliseconds(),
	)
	return uc.handleSuccess(ctx, result)
}

// classify runs the full experiment for one website: detect the consent
// platform, replay the configured number of clickstreams across all
// conditions, and reduce the captures into one aggregate verdict.
func (uc *classifierUseCase) classify(ctx context.Context, website string) (*entity.AggregateResult, error) {
	pageURL := utils.MakeURL(website)

	platform, err := uc.detectPlatform(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("visiting landing page: %w", err)
	}
	metrics.CMPDetections.WithLabelValues(platform.String()).Inc()

	var (
		reduced      []entity.ClickstreamResult
		injectionErr error
	)
	for i := 0; i < uc.numClickstreams; i++ {
		run, err := uc.runner.Run(ctx, website, pageURL, platform)
		if err != nil {
			// Partial results stay usable; later clickstreams may still work.
			slog.Warn("Clickstream run failed", "website", website, "clickstream", i, "error", err)
			continue
		}
		if run.InjectionErr != nil && injectionErr == nil {
			injectionErr = run.InjectionErr
		}
		r := analysis.ReduceClickstream(run.Clickstream, uc.reduceOpts)
		metrics.ComparableActions.Add(float64(r.TotalActions))
		reduced = append(reduced, r)
	}

	agg, ok := analysis.AggregateWebsite(website, reduced)
	if !ok {
		// Zero comparable actions: the website is excluded from output, not
		// scored as zero. Surface the most specific reason available.
		if injectionErr != nil {
			return nil, fmt.Errorf("no comparable actions: %w", injectionErr)
		}
		return nil, errNoComparableActions
	}

	agg.CMP = platform
	agg.CrawlRunID = uuid.NewString()
	agg.CrawledAt = time.Now()
	return &agg, nil
}

// detectPlatform opens a short-lived session just to probe the landing page.
func (uc *classifierUseCase) detectPlatform(ctx context.Context, pageURL string) (entity.CMPName, error) {
	page, release, err := uc.sessions.NewSession(ctx)
	if err != nil {
		return entity.CMPNone, err
	}
	defer release()

	if err := page.Navigate(ctx, pageURL); err != nil {
		return entity.CMPNone, err
	}
	if uc.settle > 0 {
		timer := time.NewTimer(uc.settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return entity.CMPNone, ctx.Err()
		case <-timer.C:
		}
	}
	return cmp.Detect(ctx, page), nil
}

var errNoComparableActions = errors.New("no comparable actions across all clickstreams")

func (uc *classifierUseCase) handleSuccess(ctx context.Context, result *entity.AggregateResult) error {
	metrics.ClassificationsTotal.WithLabelValues("success", "").Inc()

	if err := uc.resultRepo.Save(ctx, result); err != nil {
		return fmt.Errorf("failed to save aggregate result for %s: %w", result.Website, err)
	}

	if err := uc.failedRepo.Delete(ctx, result.Website); err != nil {
		slog.Warn("Failed to delete website from failed_sites after success", "website", result.Website, "error", err)
	}
	return nil
}

func (uc *classifierUseCase) handleFailure(ctx context.Context, website string, runErr error) error {
	reason := "unknown"
	switch {
	case errors.Is(runErr, consent.ErrNoConsentCookie):
		reason = "no_consent_cookie"
	case errors.Is(runErr, consent.ErrCategoryConflict):
		reason = "category_conflict"
	case errors.Is(runErr, consent.ErrConsentAPIAbsent):
		reason = "consent_api_absent"
	case errors.Is(runErr, errNoComparableActions):
		reason = "no_comparable_actions"
	case errors.Is(runErr, context.DeadlineExceeded):
		reason = "timeout"
	}
	metrics.ClassificationsTotal.WithLabelValues("failure", reason).Inc()

	site := &entity.FailedSite{
		Website:       website,
		FailureReason: runErr.Error(),
		LastAttemptAt: time.Now(),
	}
	if err := uc.failedRepo.SaveOrUpdate(ctx, site); err != nil {
		return fmt.Errorf("failed to record failed website %s: %w", website, err)
	}
	return nil
}
