// Package clickstream generates bounded action sequences and replays them
// across experimental conditions, capturing per-action screenshot artifacts.
package clickstream

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/user/consent-crawler/internal/consent"
	"github.com/user/consent-crawler/internal/entity"
	"github.com/user/consent-crawler/internal/locator"
	"github.com/user/consent-crawler/internal/repository"
)

// Config tunes clickstream generation and replay.
type Config struct {
	// MaxActions bounds the clickstream length.
	MaxActions int
	// Settle is how long to wait after navigation and after each click
	// before capturing. There is no element-wait beyond this; the action
	// budget, not a timeout policy, bounds a replay.
	Settle time.Duration
	// RejectMode is the consent decision injected for the no-cookies
	// condition.
	RejectMode consent.Mode
	// Rand drives action sampling. Nil gets a time-seeded source.
	Rand *rand.Rand
}

// Result is one generated clickstream plus experiment bookkeeping.
type Result struct {
	Clickstream *entity.Clickstream
	// InjectionErr is the first soft consent-injection failure seen across
	// conditions, if any. Replays fall back to the generic cookie treatment
	// when injection is not possible; the reason is surfaced for reporting.
	InjectionErr error
}

// Runner replays one action sequence across all conditions. Actions within
// a replay are strictly sequential: each click target is located against
// the DOM state left by the prior action.
type Runner struct {
	sessions repository.SessionFactory
	injector *consent.Injector
	cfg      Config
	rng      *rand.Rand
}

// NewRunner creates a Runner.
func NewRunner(sessions repository.SessionFactory, injector *consent.Injector, cfg Config) *Runner {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Runner{sessions: sessions, injector: injector, cfg: cfg, rng: rng}
}

// Run generates one clickstream for the website and replays it under every
// condition. Element discovery happens once, on a fresh session; the same
// selector sequence is then replayed per condition in an isolated session.
// A condition whose replay diverges simply carries fewer artifacts; partial
// results remain usable downstream.
func (r *Runner) Run(ctx context.Context, website, pageURL string, platform entity.CMPName) (*Result, error) {
	actions, err := r.discoverActions(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("discovering actions for %s: %w", website, err)
	}

	cs := &entity.Clickstream{
		ID:        uuid.NewString(),
		Website:   website,
		Actions:   actions,
		Artifacts: make(map[entity.Condition][]entity.Artifact, len(entity.Conditions)),
	}
	result := &Result{Clickstream: cs}

	for _, cond := range entity.Conditions {
		if err := r.replay(ctx, result, cond, pageURL, platform); err != nil {
			slog.Warn("Replay aborted for condition",
				"website", website,
				"condition", cond.String(),
				"captured", cs.ArtifactCount(cond),
				"error", err,
			)
		}
	}
	return result, nil
}

// discoverActions snapshots the landing page and samples a bounded selector
// sequence from the outermost clickable elements.
func (r *Runner) discoverActions(ctx context.Context, pageURL string) ([]string, error) {
	page, release, err := r.sessions.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := page.Navigate(ctx, pageURL); err != nil {
		return nil, err
	}
	if err := r.settle(ctx); err != nil {
		return nil, err
	}

	nodes, err := locator.Snapshot(ctx, page)
	if err != nil {
		return nil, err
	}
	elements := locator.LocateOutermost(nodes)

	r.rng.Shuffle(len(elements), func(i, j int) {
		elements[i], elements[j] = elements[j], elements[i]
	})
	n := len(elements)
	if n > r.cfg.MaxActions {
		n = r.cfg.MaxActions
	}
	actions := make([]string, 0, n)
	for _, el := range elements[:n] {
		actions = append(actions, el.Selector)
	}
	return actions, nil
}

// replay executes the action sequence under one condition. Artifact index 0
// is the landing capture; action k produces artifact k+1. The replay
// truncates at the first action whose target is absent.
func (r *Runner) replay(ctx context.Context, result *Result, cond entity.Condition, pageURL string, platform entity.CMPName) error {
	cs := result.Clickstream

	page, release, err := r.sessions.NewSession(ctx)
	if err != nil {
		return err
	}
	defer release()

	// First load collects the site's organic cookies and consent state.
	if err := page.Navigate(ctx, pageURL); err != nil {
		return err
	}
	if err := r.settle(ctx); err != nil {
		return err
	}

	if err := r.prepare(ctx, result, page, cond, pageURL, platform); err != nil {
		return err
	}

	// Reload so the prepared cookie state governs the capture pass.
	if err := page.Navigate(ctx, pageURL); err != nil {
		return err
	}
	if err := r.settle(ctx); err != nil {
		return err
	}

	shot, err := page.Screenshot(ctx)
	if err != nil {
		return err
	}
	cs.Artifacts[cond] = append(cs.Artifacts[cond], entity.Artifact{
		Condition:   cond,
		ActionIndex: 0,
		Screenshot:  shot,
	})

	for i, selector := range cs.Actions {
		exists, err := page.QueryExists(ctx, selector)
		if err != nil {
			return err
		}
		if !exists {
			// Divergence: the target vanished under this condition. Stop
			// here; no artifact is fabricated for the missing index.
			slog.Debug("Clickstream diverged",
				"website", cs.Website,
				"condition", cond.String(),
				"action_index", i,
			)
			return nil
		}
		if err := page.Click(ctx, selector); err != nil {
			return err
		}
		if err := r.settle(ctx); err != nil {
			return err
		}

		shot, err := page.Screenshot(ctx)
		if err != nil {
			return err
		}
		cs.Artifacts[cond] = append(cs.Artifacts[cond], entity.Artifact{
			Condition:   cond,
			ActionIndex: i + 1,
			Screenshot:  shot,
		})
	}
	return nil
}

// prepare sets up the condition's cookie treatment. Baseline replays run
// untouched. When the platform supports state injection the experimental
// conditions forge the consent cookie; otherwise no-cookies falls back to
// clearing the jar and all-cookies keeps the organic state.
func (r *Runner) prepare(ctx context.Context, result *Result, page repository.PageAutomation, cond entity.Condition, pageURL string, platform entity.CMPName) error {
	if cond.IsBaseline() {
		return nil
	}

	mode := consent.ModeAcceptAll
	if cond == entity.ConditionNoCookies {
		mode = r.cfg.RejectMode
		if !mode.IsValid() {
			mode = consent.ModeRejectTracking
		}
	}

	if platform == entity.CMPOneTrust {
		err := r.injector.Apply(ctx, page, pageURL, mode)
		if err == nil {
			return nil
		}
		if result.InjectionErr == nil {
			result.InjectionErr = err
		}
		slog.Warn("Consent injection failed, using generic fallback",
			"website", result.Clickstream.Website,
			"condition", cond.String(),
			"error", err,
		)
	}

	if cond == entity.ConditionNoCookies {
		return page.ClearCookies(ctx)
	}
	return nil
}

func (r *Runner) settle(ctx context.Context) error {
	if r.cfg.Settle <= 0 {
		return nil
	}
	timer := time.NewTimer(r.cfg.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
