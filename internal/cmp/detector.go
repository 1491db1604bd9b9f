// Package cmp identifies the consent-management platform governing a page.
package cmp

import (
	"context"
	"log/slog"

	"github.com/user/consent-crawler/internal/entity"
)

// Evaluator runs a script in a live page and unmarshals its result.
// Satisfied by the Page Automation collaborator.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, out any) error
}

// probe is one independent detection check: a JS expression that is true
// when the platform's global API object is present.
type probe struct {
	name entity.CMPName
	expr string
}

// probes are ordered by priority; the first positive probe wins. The set is
// closed: anything else routes the caller to the generic element-driven
// fallback.
var probes = []probe{
	{entity.CMPOneTrust, `typeof window.OneTrust !== "undefined" || typeof window.Optanon !== "undefined"`},
	{entity.CMPCookiebot, `typeof window.Cookiebot !== "undefined"`},
	{entity.CMPTrustArc, `typeof window.truste !== "undefined"`},
	{entity.CMPDidomi, `typeof window.Didomi !== "undefined"`},
	{entity.CMPQuantcast, `typeof window.__tcfapi === "function"`},
}

// Detect runs the probe sequence against a live page. Probes are
// independent; a probe that errors counts as negative. No retries.
func Detect(ctx context.Context, page Evaluator) entity.CMPName {
	for _, p := range probes {
		var present bool
		if err := page.Evaluate(ctx, p.expr, &present); err != nil {
			slog.Debug("CMP probe failed", "cmp", p.name.String(), "error", err)
			continue
		}
		if present {
			return p.name
		}
	}
	return entity.CMPNone
}
