package clickstream

import (
	"context"
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/consent-crawler/internal/consent"
	"github.com/user/consent-crawler/internal/entity"
	"github.com/user/consent-crawler/internal/locator"
	"github.com/user/consent-crawler/internal/repository"
)

// fakePage scripts one browser session. The snapshot payload and the set of
// selectors reported absent are fixed at construction.
type fakePage struct {
	nodes      []locator.Node
	missing    map[string]bool
	apiPresent bool

	navigations int
	clicks      []string
	cleared     bool
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.navigations++
	return nil
}

func (f *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	switch v := out.(type) {
	case *[]locator.Node:
		*v = f.nodes
	case *bool:
		*v = f.apiPresent
	case *[]consent.Header:
		*v = nil
	}
	return nil
}

func (f *fakePage) Click(ctx context.Context, selector string) error {
	f.clicks = append(f.clicks, selector)
	return nil
}

func (f *fakePage) QueryExists(ctx context.Context, selector string) (bool, error) {
	return !f.missing[selector], nil
}

func (f *fakePage) Screenshot(ctx context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}

func (f *fakePage) GetCookie(ctx context.Context, name string) (string, bool, error) {
	return "", false, nil
}

func (f *fakePage) SetCookie(ctx context.Context, c repository.Cookie) error { return nil }

func (f *fakePage) ClearCookies(ctx context.Context) error {
	f.cleared = true
	return nil
}

func (f *fakePage) CurrentURL(ctx context.Context) (string, error) {
	return "https://example.com/", nil
}

// fakeFactory hands out one scripted page per session. Session 0 is element
// discovery; sessions 1..4 replay the conditions in execution order.
type fakeFactory struct {
	nodes         []locator.Node
	missingByCall map[int]map[string]bool

	pages []*fakePage
}

func (f *fakeFactory) NewSession(ctx context.Context) (repository.PageAutomation, func(), error) {
	page := &fakePage{
		nodes:   f.nodes,
		missing: f.missingByCall[len(f.pages)],
	}
	f.pages = append(f.pages, page)
	return page, func() {}, nil
}

// twoButtonPage has two outermost clickable elements under a stable anchor.
func twoButtonPage() []locator.Node {
	return []locator.Node{
		{Index: 0, Parent: -1, Tag: "HTML"},
		{Index: 1, Parent: 0, Tag: "BODY"},
		{Index: 2, Parent: 1, Tag: "DIV", ID: "root"},
		{Index: 3, Parent: 2, Tag: "BUTTON", Button: true, Text: "One"},
		{Index: 4, Parent: 2, Tag: "A", Href: true, Text: "Two"},
	}
}

func newTestRunner(factory *fakeFactory, maxActions int) *Runner {
	return NewRunner(factory, consent.NewInjector(consent.DefaultCorpus()), Config{
		MaxActions: maxActions,
		Settle:     0,
		RejectMode: consent.ModeRejectTracking,
		Rand:       rand.New(rand.NewSource(42)),
	})
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{nodes: twoButtonPage()}
	runner := newTestRunner(factory, 5)

	result, err := runner.Run(context.Background(), "example.com", "https://example.com", entity.CMPNone)
	require.NoError(t, err)

	cs := result.Clickstream
	assert.NotEmpty(t, cs.ID)
	assert.Equal(t, "example.com", cs.Website)
	assert.Len(t, cs.Actions, 2, "both outermost elements sampled")
	assert.ElementsMatch(t,
		[]string{"#root > BUTTON:nth-child(1)", "#root > A:nth-child(2)"},
		cs.Actions,
	)

	// One discovery session plus one per condition.
	require.Len(t, factory.pages, 1+len(entity.Conditions))

	for _, cond := range entity.Conditions {
		// Landing capture plus one capture per action.
		assert.Equal(t, 3, cs.ArtifactCount(cond), "condition %s", cond)
		for i, a := range cs.Artifacts[cond] {
			assert.Equal(t, i, a.ActionIndex)
		}
	}

	// Replay loads the page twice: organic collection, then the prepared pass.
	for _, page := range factory.pages[1:] {
		assert.Equal(t, 2, page.navigations)
		assert.Equal(t, cs.Actions, page.clicks)
	}

	// Without an injectable platform, no-cookies clears the jar and
	// all-cookies keeps the organic state.
	noCookiesPage := factory.pages[4]
	allCookiesPage := factory.pages[3]
	assert.True(t, noCookiesPage.cleared)
	assert.False(t, allCookiesPage.cleared)

	assert.NoError(t, result.InjectionErr)
}

func TestRunnerBoundsActions(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{nodes: twoButtonPage()}
	runner := newTestRunner(factory, 1)

	result, err := runner.Run(context.Background(), "example.com", "https://example.com", entity.CMPNone)
	require.NoError(t, err)
	assert.Len(t, result.Clickstream.Actions, 1)
}

func TestRunnerTruncatesAtMissingTarget(t *testing.T) {
	t.Parallel()

	// The second action's target vanishes under no-cookies only.
	factory := &fakeFactory{nodes: twoButtonPage()}
	runner := newTestRunner(factory, 5)

	// Discover the shuffled action order with a dry factory first.
	probe := &fakeFactory{nodes: twoButtonPage()}
	probeResult, err := newTestRunner(probe, 5).Run(context.Background(), "example.com", "https://example.com", entity.CMPNone)
	require.NoError(t, err)
	secondAction := probeResult.Clickstream.Actions[1]

	factory.missingByCall = map[int]map[string]bool{
		4: {secondAction: true}, // session 4 replays no-cookies
	}

	result, err := runner.Run(context.Background(), "example.com", "https://example.com", entity.CMPNone)
	require.NoError(t, err, "divergence is truncation, not failure")

	cs := result.Clickstream
	assert.Equal(t, 3, cs.ArtifactCount(entity.ConditionBaseline))
	assert.Equal(t, 3, cs.ArtifactCount(entity.ConditionControl))
	assert.Equal(t, 3, cs.ArtifactCount(entity.ConditionAllCookies))
	// Landing plus the first action; nothing fabricated for the missing one.
	assert.Equal(t, 2, cs.ArtifactCount(entity.ConditionNoCookies))
}

func TestRunnerRecordsInjectionFailure(t *testing.T) {
	t.Parallel()

	// Pages report the OneTrust platform absent at injection time: the
	// experimental conditions fall back to the generic treatment and the
	// reason is surfaced without failing the run.
	factory := &fakeFactory{nodes: twoButtonPage()}
	runner := newTestRunner(factory, 5)

	result, err := runner.Run(context.Background(), "example.com", "https://example.com", entity.CMPOneTrust)
	require.NoError(t, err)
	assert.ErrorIs(t, result.InjectionErr, consent.ErrConsentAPIAbsent)

	// Fallback still applies the cookie treatments.
	assert.True(t, factory.pages[4].cleared)
	for _, cond := range entity.Conditions {
		assert.Equal(t, 3, result.Clickstream.ArtifactCount(cond))
	}
}
