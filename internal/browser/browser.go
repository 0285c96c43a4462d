// Package browser provides the page-driving session the bankmail client
// runs on, implemented with chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is the minimal page-driving surface the bankmail client needs.
// Every call blocks until the step completes or the session's navigation
// timeout elapses.
type Session interface {
	// Navigate loads url in the active tab.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the CSS selector matches a visible node.
	WaitVisible(ctx context.Context, sel string) error

	// Fill types value into the input matching the CSS selector.
	Fill(ctx context.Context, sel, value string) error

	// Click clicks the first node matching the CSS selector.
	Click(ctx context.Context, sel string) error

	// Text returns the inner text of the first node matching the CSS
	// selector.
	Text(ctx context.Context, sel string) (string, error)

	// Evaluate runs a JavaScript expression in the page and unmarshals
	// its JSON result into out.
	Evaluate(ctx context.Context, expr string, out any) error

	// Close shuts the browser down. Safe to call on all exit paths.
	Close() error
}

// Config controls how the browser is launched.
type Config struct {
	// Headless hides the browser window. Turn off with --show-browser.
	Headless bool

	// Timeout bounds each individual navigation or wait step.
	Timeout time.Duration
}

// DefaultConfig returns the standard headless configuration.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// ChromeSession drives a Chrome/Chromium instance over the DevTools
// protocol.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// New launches a browser according to cfg and returns a ready session.
func New(cfg Config) (*ChromeSession, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a launch failure surfaces here
	// rather than on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &ChromeSession{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		timeout:     timeout,
	}, nil
}

// run executes actions against the browser, bounded by the session
// timeout. The caller's ctx is checked up front; chromedp steps
// themselves run on the browser context.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	return chromedp.Run(tctx, actions...)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *ChromeSession) WaitVisible(ctx context.Context, sel string) error {
	if err := s.run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", sel, err)
	}
	return nil
}

func (s *ChromeSession) Fill(ctx context.Context, sel, value string) error {
	if err := s.run(ctx, chromedp.SendKeys(sel, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("filling %q: %w", sel, err)
	}
	return nil
}

func (s *ChromeSession) Click(ctx context.Context, sel string) error {
	if err := s.run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("clicking %q: %w", sel, err)
	}
	return nil
}

func (s *ChromeSession) Text(ctx context.Context, sel string) (string, error) {
	var out string
	if err := s.run(ctx, chromedp.Text(sel, &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading text of %q: %w", sel, err)
	}
	return out, nil
}

func (s *ChromeSession) Evaluate(ctx context.Context, expr string, out any) error {
	if err := s.run(ctx, chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("evaluating page script: %w", err)
	}
	return nil
}

// Close shuts down the tab and the browser process.
func (s *ChromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

// IsTimeout reports whether err is a step that ran out of time, which
// for login means the post-login marker never appeared.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
