package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const (
	homeURL    = "https://example.com/"
	resultsURL = "https://example.com/search/?q=Salisbury%2C+MA"
	placeURL   = "https://example.com/places/salisbury/"
)

var pages = map[string]string{
	homeURL: `<html><body>
		<form class="app-search" action="/search/"><input id="searchInput" name="q"><button type="submit">Go</button></form>
	</body></html>`,
	resultsURL: `<html><body>
		<div class="search-item"><span>/places/salisbury-nc/</span><a href="/places/salisbury-nc/">Salisbury, NC</a></div>
		<div class="search-item"><span>/places/salisbury/</span><a href="/places/salisbury/">Salisbury, MA</a></div>
	</body></html>`,
	placeURL: `<html><body>
		<table><caption>Tide table for Salisbury this week</caption><tbody>
			<tr><td>Mon 22</td><td>3:36am ▼ 0.98 ft</td></tr>
			<tr><td>Tue 23</td><td>4:21am ▼ 1.02 ft</td></tr>
		</tbody></table>
		<table><caption>Tide table for Salisbury this month</caption><tbody><tr><td>x</td></tr></tbody></table>
		<script>var ignored = "text";</script>
	</body></html>`,
}

func TestStaticSearchFlow(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(pages)

	if err := s.Navigate(ctx, homeURL); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := s.SubmitText(ctx, Selector{CSS: "form.app-search input#searchInput"}, "Salisbury, MA"); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if got := s.URL(); got != resultsURL {
		t.Fatalf("after submit at %q, want %q", got, resultsURL)
	}

	link, err := s.WaitFor(ctx, Selector{
		CSS:    "a",
		Within: &Selector{CSS: "div.search-item", Contains: []string{"/places/salisbury/"}},
	}, time.Second)
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if got := link.Text(); got != "Salisbury, MA" {
		t.Errorf("link text %q, want %q", got, "Salisbury, MA")
	}
	if err := link.Click(ctx); err != nil {
		t.Fatalf("Click: %v", err)
	}

	want := []string{homeURL, resultsURL, placeURL}
	if diff := cmp.Diff(want, s.Visited); diff != "" {
		t.Errorf("visited (-want,+got): %s", diff)
	}
}

func TestStaticFindAll(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(pages)
	if err := s.Navigate(ctx, placeURL); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	rows, err := s.FindAll(ctx, Selector{
		CSS:    "tbody > tr",
		Within: &Selector{CSS: "table", Contains: []string{"Tide table for", "this week"}},
	})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.Text())
	}
	want := []string{"Mon 22 3:36am ▼ 0.98 ft", "Tue 23 4:21am ▼ 1.02 ft"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows (-want,+got): %s", diff)
	}
}

func TestStaticWaitForTimeout(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(pages)
	if err := s.Navigate(ctx, homeURL); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	_, err := s.WaitFor(ctx, Selector{CSS: "body", Contains: []string{"Too many search requests"}}, 5*time.Second)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}

func TestStaticNavigateMissing(t *testing.T) {
	s := NewStatic(pages)
	err := s.Navigate(context.Background(), "https://example.com/nope/")
	var navErr *NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("got %v, want *NavigationError", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestSelectorString(t *testing.T) {
	sel := Selector{
		CSS:     "a",
		Visible: true,
		Within:  &Selector{CSS: "div.search-item", Contains: []string{"hint"}},
	}
	want := `div.search-item:contains("hint") >> a:visible`
	if got := sel.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
