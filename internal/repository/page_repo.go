package repository

import (
	"context"
	"image"
	"time"
)

// Cookie is the wire shape handed to the browser when committing a cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string // leading-dot registrable domain, e.g. ".example.com"
	Path     string
	Expires  time.Time
	SameSite string // "Lax", "Strict", "None"
	Secure   bool
}

// PageAutomation is the browser collaborator driving one page session.
// All classification and comparison logic runs outside it; implementations
// only navigate, run scripts, click, capture, and manage cookies.
type PageAutomation interface {
	// Navigate loads the URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a script in the page and unmarshals its result into out.
	Evaluate(ctx context.Context, script string, out any) error
	// Click dispatches a click on the first element matching the selector.
	Click(ctx context.Context, selector string) error
	// QueryExists reports whether any element matches the selector.
	QueryExists(ctx context.Context, selector string) (bool, error)
	// Screenshot captures a full-page screenshot.
	Screenshot(ctx context.Context) (image.Image, error)
	// GetCookie returns the named cookie's value. The bool is false when no
	// such cookie exists.
	GetCookie(ctx context.Context, name string) (string, bool, error)
	// SetCookie commits a cookie to the session's jar.
	SetCookie(ctx context.Context, c Cookie) error
	// ClearCookies empties the session's cookie jar.
	ClearCookies(ctx context.Context) error
	// CurrentURL returns the page's current location.
	CurrentURL(ctx context.Context) (string, error)
}

// SessionFactory opens isolated page sessions. Each replay condition gets
// its own session so cookie jars never bleed between conditions.
type SessionFactory interface {
	// NewSession returns a fresh session and a release function that must be
	// called when the session is done.
	NewSession(ctx context.Context) (PageAutomation, func(), error)
}
