// Package chromedp_page implements the Page Automation collaborator on
// headless Chrome via chromedp.
package chromedp_page

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/user/consent-crawler/internal/repository"
)

// SessionFactoryImpl opens one headless Chrome instance per session. Each
// session gets its own exec allocator, so cookie jars are fully isolated
// between replay conditions.
type SessionFactoryImpl struct {
	timeout time.Duration
}

// NewSessionFactory creates a factory whose sessions are bounded by the
// given task timeout.
func NewSessionFactory(taskTimeout time.Duration) *SessionFactoryImpl {
	return &SessionFactoryImpl{timeout: taskTimeout}
}

// NewSession starts an isolated browser session. The release function tears
// the whole browser down.
func (f *SessionFactoryImpl) NewSession(ctx context.Context) (repository.PageAutomation, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)

	release := func() {
		cancelTimeout()
		cancelTask()
		cancelAlloc()
	}

	// Spawn the browser eagerly so session errors surface here, not on the
	// first navigation.
	if err := chromedp.Run(taskCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("starting browser session: %w", err)
	}
	return &Page{ctx: taskCtx}, release, nil
}

// Page is one live browser session. Operations run on the session's own
// context; the session timeout set by the factory bounds all of them.
type Page struct {
	ctx context.Context
}

// Navigate loads the URL and waits for the document body.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Evaluate runs a script in the page and unmarshals its result into out.
func (p *Page) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Evaluate(script, out))
}

// Click dispatches a click on the first element matching the selector.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// QueryExists reports whether any element matches the selector.
func (p *Page) QueryExists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	script := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	if err := p.Evaluate(ctx, script, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Screenshot captures a full-page screenshot and decodes it.
func (p *Page) Screenshot(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf []byte
	if err := chromedp.Run(p.ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	return img, nil
}

// GetCookie returns the named cookie's value from the session jar.
func (p *Page) GetCookie(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var value string
	var found bool
	err := chromedp.Run(p.ctx, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		cookies, err := storage.GetCookies().Do(cdpCtx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			if c.Name == name {
				value = c.Value
				found = true
				return nil
			}
		}
		return nil
	}))
	if err != nil {
		return "", false, fmt.Errorf("reading cookie %q: %w", name, err)
	}
	return value, found, nil
}

// SetCookie commits a cookie to the session jar.
func (p *Page) SetCookie(ctx context.Context, c repository.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expires := cdp.TimeSinceEpoch(c.Expires)
	path := c.Path
	if path == "" {
		path = "/"
	}
	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		return network.SetCookie(c.Name, c.Value).
			WithDomain(c.Domain).
			WithPath(path).
			WithExpires(&expires).
			WithSameSite(sameSite(c.SameSite)).
			WithSecure(c.Secure).
			Do(cdpCtx)
	}))
}

// ClearCookies empties the session jar.
func (p *Page) ClearCookies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		return storage.ClearCookies().Do(cdpCtx)
	}))
}

// CurrentURL returns the page's current location.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var loc string
	if err := chromedp.Run(p.ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func sameSite(s string) network.CookieSameSite {
	switch s {
	case "Strict":
		return network.CookieSameSiteStrict
	case "None":
		return network.CookieSameSiteNone
	default:
		return network.CookieSameSiteLax
	}
}
