package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/consent-crawler/internal/repository"
	"github.com/user/consent-crawler/pkg/utils"
)

// Distinct soft-failure reasons. None of these abort a crawl; the caller
// records the site as non-classifiable for this sub-algorithm and moves on.
var (
	// ErrConsentAPIAbsent means the platform's global API object is missing.
	ErrConsentAPIAbsent = errors.New("consent API not present on page")
	// ErrNoConsentCookie means the platform never wrote its consent cookie.
	ErrNoConsentCookie = errors.New("consent cookie not found")
)

const (
	cookieExpiry = 24 * time.Hour

	// apiProbeScript checks for the OneTrust SDK globals.
	apiProbeScript = `typeof window.OneTrust !== "undefined" || typeof window.Optanon !== "undefined"`

	// headerScanScript collects the preference-center category headers as an
	// explicit payload. Self-contained: reads nothing but the DOM, writes
	// nothing.
	headerScanScript = `(() => {
	const out = [];
	for (const el of document.querySelectorAll('[id^="ot-header-id-"]')) {
		out.push({ id: el.id, text: (el.textContent || "").trim() });
	}
	return out;
})()`
)

// Injector rewrites a OneTrust consent cookie to express a target decision.
type Injector struct {
	corpus Corpus
}

// NewInjector creates an Injector using the given tracking vocabulary.
func NewInjector(corpus Corpus) *Injector {
	return &Injector{corpus: corpus}
}

// Apply forges the page's consent state to the given mode and commits it.
//
// The rewritten cookie keeps every field the SDK wrote except groups,
// interactionCount and landingPath, and is scoped the way the SDK scopes its
// own cookie: leading-dot registrable domain, 1-day expiry, SameSite=Lax,
// not secure-only. A companion banner-dismissed cookie with identical scope
// suppresses re-prompting. No retries; failures return a distinct reason.
func (i *Injector) Apply(ctx context.Context, page repository.PageAutomation, pageURL string, mode Mode) error {
	var apiPresent bool
	if err := page.Evaluate(ctx, apiProbeScript, &apiPresent); err != nil {
		return fmt.Errorf("probing consent API: %w", err)
	}
	if !apiPresent {
		return ErrConsentAPIAbsent
	}

	var headers []Header
	if err := page.Evaluate(ctx, headerScanScript, &headers); err != nil {
		return fmt.Errorf("scanning category headers: %w", err)
	}
	categories, err := ExtractCategories(headers)
	if err != nil {
		return err
	}
	decision := BuildDecision(categories, i.corpus, mode)

	raw, found, err := page.GetCookie(ctx, ConsentCookieName)
	if err != nil {
		return fmt.Errorf("reading consent cookie: %w", err)
	}
	if !found {
		return ErrNoConsentCookie
	}

	state := DecodeState(raw)
	state.SetGroups(decision)
	state.BumpInteractionCount()
	state.MarkNonOrganic()

	rootDomain, err := utils.RegistrableDomain(pageURL)
	if err != nil {
		return fmt.Errorf("resolving cookie domain for %q: %w", pageURL, err)
	}

	expires := time.Now().Add(cookieExpiry)
	consentCookie := repository.Cookie{
		Name:     ConsentCookieName,
		Value:    state.Encode(),
		Domain:   "." + rootDomain,
		Path:     "/",
		Expires:  expires,
		SameSite: "Lax",
		Secure:   false,
	}
	if err := page.SetCookie(ctx, consentCookie); err != nil {
		return fmt.Errorf("committing consent cookie: %w", err)
	}

	bannerCookie := consentCookie
	bannerCookie.Name = BannerCookieName
	bannerCookie.Value = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	if err := page.SetCookie(ctx, bannerCookie); err != nil {
		return fmt.Errorf("committing banner-dismissed cookie: %w", err)
	}

	slog.Debug("Consent state injected",
		"url", pageURL,
		"mode", string(mode),
		"categories", len(categories),
	)
	return nil
}
