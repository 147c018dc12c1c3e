package page

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNotFound is the navigation failure for a URL Static has no page for.
var ErrNotFound = errors.New("page not found")

// Static is a Driver over a fixed set of HTML documents keyed by absolute
// URL. Submitting a form navigates to the form's action with the input's
// value in the query string, and clicking a link navigates to its href, so
// multi-page flows can be replayed from saved pages.
//
// Nothing changes on a static page after it loads, so WaitFor never sleeps:
// it either matches immediately or times out immediately.
type Static struct {
	Pages map[string]string

	// Visited records every URL navigated to, in order.
	Visited []string

	url *url.URL
	doc *goquery.Document
}

var _ Session = (*Static)(nil)

// NewStatic returns a Static serving pages.
func NewStatic(pages map[string]string) *Static {
	return &Static{Pages: pages}
}

// StaticOpener returns an Opener handing out independent Static sessions
// over the same pages.
func StaticOpener(pages map[string]string) Opener {
	return func(context.Context) (Session, error) {
		return NewStatic(pages), nil
	}
}

func (s *Static) Close() error {
	return nil
}

// URL returns the current page address, or "" before the first navigation.
func (s *Static) URL() string {
	if s.url == nil {
		return ""
	}
	return s.url.String()
}

func (s *Static) Navigate(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	s.Visited = append(s.Visited, rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	body, ok := s.Pages[u.String()]
	if !ok {
		return &NavigationError{URL: rawURL, Err: ErrNotFound}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return &NavigationError{URL: rawURL, Err: fmt.Errorf("parse html: %w", err)}
	}
	s.url, s.doc = u, doc
	return nil
}

func (s *Static) WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := s.resolve(sel)
	if matches.Length() == 0 {
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, sel)
	}
	return &staticElement{s: s, sel: matches.First()}, nil
}

func (s *Static) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := s.resolve(sel)
	elems := make([]Element, 0, matches.Length())
	matches.Each(func(_ int, m *goquery.Selection) {
		elems = append(elems, &staticElement{s: s, sel: m})
	})
	return elems, nil
}

func (s *Static) SubmitText(ctx context.Context, sel Selector, text string) error {
	input := s.resolve(sel).First()
	if input.Length() == 0 {
		return fmt.Errorf("submit %q to %s: %w", text, sel, ErrTimeout)
	}

	action := s.url
	if a, ok := input.Closest("form").Attr("action"); ok {
		ref, err := url.Parse(a)
		if err != nil {
			return fmt.Errorf("submit %q: form action %q: %w", text, a, err)
		}
		action = s.url.ResolveReference(ref)
	}
	name := input.AttrOr("name", "q")

	target := *action
	query := target.Query()
	query.Set(name, text)
	target.RawQuery = query.Encode()
	return s.Navigate(ctx, target.String())
}

// resolve evaluates sel against the current document.
func (s *Static) resolve(sel Selector) *goquery.Selection {
	if s.doc == nil {
		return &goquery.Selection{}
	}
	roots := s.doc.Selection
	if sel.Within != nil {
		roots = s.resolve(*sel.Within)
	}
	return roots.Find(sel.CSS).FilterFunction(func(_ int, m *goquery.Selection) bool {
		text := m.Text()
		for _, c := range sel.Contains {
			if !strings.Contains(text, c) {
				return false
			}
		}
		return true
	})
}

type staticElement struct {
	s   *Static
	sel *goquery.Selection
}

// Text joins the element's text nodes with single spaces, approximating
// how a browser renders table cells side by side.
func (e *staticElement) Text() string {
	var parts []string
	for _, n := range e.sel.Nodes {
		parts = append(parts, textNodes(n)...)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func (e *staticElement) Click(ctx context.Context) error {
	href, ok := e.sel.Attr("href")
	if !ok {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("click link %q: %w", href, err)
	}
	return e.s.Navigate(ctx, e.s.url.ResolveReference(ref).String())
}

func textNodes(n *html.Node) []string {
	if n.Type == html.TextNode {
		return []string{n.Data}
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return nil
	}
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, textNodes(c)...)
	}
	return out
}
