package tideschart

import "github.com/spencer-p/hightides/pkg/page"

const (
	BaseURL = "https://www.tideschart.com"
	// URLPrefix starts every location page, e.g.
	// https://www.tideschart.com/United-States/Massachusetts/Essex-County/Newburyport/
	URLPrefix = BaseURL + "/"

	// DaysPerTable is the number of rows in the weekly table.
	DaysPerTable = 7
)

var (
	SearchBox = page.Selector{CSS: `form.app-search input#searchInput`}

	// Throttled matches the banner shown once the site refuses further
	// searches for a while.
	Throttled = page.Selector{CSS: "body", Contains: []string{"Too many search requests"}}

	WeeklyRows = page.Selector{
		CSS:    "tbody > tr",
		Within: &page.Selector{CSS: "table", Contains: []string{"Tide table for", "this week"}},
	}
)

// SearchResult matches the clickable link of the search result whose text
// contains hint.
func SearchResult(hint string) page.Selector {
	return page.Selector{
		CSS:     "a",
		Visible: true,
		Within:  &page.Selector{CSS: "div.search-item", Contains: []string{hint}},
	}
}
