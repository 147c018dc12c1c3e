package page

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"

// BrowserOptions configures a headless Chrome session.
type BrowserOptions struct {
	DisableHeadless bool
	UserAgent       string
	// PollInterval is how often WaitFor re-evaluates its selector.
	PollInterval time.Duration
	// ActionTimeout bounds navigation, typing and clicks.
	ActionTimeout time.Duration
	Logger        *slog.Logger
}

// Browser is a Driver backed by one Chrome tab.
type Browser struct {
	opts   BrowserOptions
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

var _ Session = (*Browser)(nil)

// NewBrowser starts Chrome and opens a tab. The browser stays alive until
// Close is called or parent is cancelled.
func NewBrowser(parent context.Context, opts BrowserOptions) (*Browser, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.DisableHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(ua),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, execOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run must use the tab context itself so that the browser is
	// not tied to a shorter lived child context.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	logger.Debug("chrome session started", "headless", !opts.DisableHeadless)

	return &Browser{
		opts:   opts,
		ctx:    tabCtx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// BrowserOpener returns an Opener that starts a fresh Chrome per session.
func BrowserOpener(opts BrowserOptions) Opener {
	return func(ctx context.Context) (Session, error) {
		return NewBrowser(ctx, opts)
	}
}

// Close shuts the tab and the browser process down.
func (b *Browser) Close() error {
	b.cancel()
	return nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.logger.Debug("navigating", "url", url)
	if err := b.run(ctx, b.opts.ActionTimeout, chromedp.Navigate(url)); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

func (b *Browser) WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	texts, err := poll(ctx, timeout, b.opts.PollInterval, func() ([]string, error) {
		return b.texts(ctx, sel)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sel, err)
	}
	return &browserElement{b: b, sel: sel, text: texts[0]}, nil
}

// poll calls query until it returns at least one text or timeout elapses.
// Query errors count as no match yet: while a page loads, scripts fail with
// the execution context destroyed. The last such error is reported with
// ErrTimeout.
func poll(ctx context.Context, timeout, interval time.Duration, query func() ([]string, error)) ([]string, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		texts, err := query()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil && len(texts) > 0 {
			return texts, nil
		}
		if err != nil {
			lastErr = err
		}
		if time.Now().After(deadline) {
			if lastErr != nil {
				return nil, fmt.Errorf("%w after %s (last error: %w)", ErrTimeout, timeout, lastErr)
			}
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *Browser) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	texts, err := b.texts(ctx, sel)
	if err != nil {
		return nil, err
	}
	elems := make([]Element, len(texts))
	for i, text := range texts {
		elems[i] = &browserElement{b: b, sel: sel, index: i, text: text}
	}
	return elems, nil
}

func (b *Browser) SubmitText(ctx context.Context, sel Selector, text string) error {
	err := b.run(ctx, b.opts.ActionTimeout,
		chromedp.SendKeys(sel.CSS, text, chromedp.ByQuery),
		chromedp.Submit(sel.CSS, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("submit %q to %s: %w", text, sel, err)
	}
	return nil
}

// texts returns the rendered text of every element sel matches.
func (b *Browser) texts(ctx context.Context, sel Selector) ([]string, error) {
	script, err := selectorScript(sel, "return matches.map(function(e) { return e.innerText || e.textContent || ''; });")
	if err != nil {
		return nil, err
	}
	var texts []string
	if err := b.run(ctx, b.opts.ActionTimeout, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, fmt.Errorf("query %s: %w", sel, err)
	}
	return texts, nil
}

type browserElement struct {
	b     *Browser
	sel   Selector
	index int
	text  string
}

func (e *browserElement) Text() string {
	return e.text
}

func (e *browserElement) Click(ctx context.Context) error {
	body := fmt.Sprintf("if (matches.length <= %d) { return false; } matches[%d].click(); return true;", e.index, e.index)
	script, err := selectorScript(e.sel, body)
	if err != nil {
		return err
	}
	var clicked bool
	if err := e.b.run(ctx, e.b.opts.ActionTimeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", e.sel, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: element is gone", e.sel)
	}
	return nil
}

// selectorJS resolves a JSON encoded Selector to the list of matching nodes.
const selectorJS = `function resolve(s) {
	var roots = s.within ? resolve(s.within) : [document];
	var out = [];
	roots.forEach(function(root) {
		root.querySelectorAll(s.css).forEach(function(e) {
			if (out.indexOf(e) >= 0) { return; }
			var text = e.textContent || '';
			var ok = (s.contains || []).every(function(c) { return text.indexOf(c) >= 0; });
			if (ok && (!s.visible || e.getClientRects().length > 0)) { out.push(e); }
		});
	});
	return out;
}`

// selectorScript wraps body in a function where matches holds the nodes sel
// resolves to.
func selectorScript(sel Selector, body string) (string, error) {
	encoded, err := json.Marshal(sel)
	if err != nil {
		return "", fmt.Errorf("encode selector: %w", err)
	}
	return fmt.Sprintf("(function() { %s\nvar matches = resolve(%s);\n%s })()", selectorJS, encoded, body), nil
}
