// Package locations loads the places to fetch tide tables for. A location
// is either the URL of its tide page or a search query plus a hint that
// picks the right result out of the search results.
package locations

import (
	"fmt"

	"github.com/spencer-p/hightides/pkg/tideschart"
)

// Mode is how a set of locations is reached.
type Mode int

const (
	Unknown Mode = iota
	DirectURL
	NamedSearch
)

func (m Mode) String() string {
	switch m {
	case DirectURL:
		return "urls"
	case NamedSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Location is one of URL or Search.
type Location interface {
	// Key identifies the location in results: the URL or the query.
	Key() string
	isLocation()
}

// URL is a location reached by navigating straight to its tide page.
type URL struct {
	URL string
}

func (u URL) Key() string { return u.URL }
func (URL) isLocation()   {}

// Search is a location found through the site's search box.
type Search struct {
	// Query is typed into the search box.
	Query string
	// Hint is a substring found only in the wanted search result.
	Hint string
}

func (s Search) Key() string { return s.Query }
func (Search) isLocation()   {}

// Set is a homogeneous list of locations.
type Set struct {
	Mode      Mode
	Locations []Location
}

// Keys returns the location keys in order.
func (s Set) Keys() []string {
	keys := make([]string, len(s.Locations))
	for i, loc := range s.Locations {
		keys[i] = loc.Key()
	}
	return keys
}

// Default is used when no locations are configured: beaches of Essex
// County, Massachusetts.
func Default() Set {
	paths := []string{
		"United-States/Massachusetts/Essex-County/Salisbury/",
		"United-States/Massachusetts/Essex-County/Newburyport/",
		"United-States/Massachusetts/Essex-County/Rowley/",
		"United-States/Massachusetts/Essex-County/Crane-Beach/",
		"United-States/Massachusetts/Essex-County/Wingaersheek-Beach/",
		"United-States/Massachusetts/Essex-County/Rockport/",
	}
	set := Set{Mode: DirectURL}
	for _, p := range paths {
		set.Locations = append(set.Locations, URL{URL: tideschart.URLPrefix + p})
	}
	return set
}

// DefaultSearches is the search mode counterpart of Default.
func DefaultSearches() Set {
	return Set{
		Mode: NamedSearch,
		Locations: []Location{
			Search{Query: "Salisbury, MA, USA", Hint: "/United-States/Massachusetts/Essex-County/Salisbury/"},
			Search{Query: "Newburyport, MA, USA", Hint: "/United-States/Massachusetts/Essex-County/Newburyport/"},
		},
	}
}

// Validate checks that the set has a known mode and that every location is
// of the variant the mode calls for.
func (s Set) Validate() error {
	for i, loc := range s.Locations {
		ok := false
		switch loc.(type) {
		case URL:
			ok = s.Mode == DirectURL
		case Search:
			ok = s.Mode == NamedSearch
		}
		if !ok {
			return &SchemaError{Field: fmt.Sprintf("locations[%d]", i), Msg: fmt.Sprintf("%T does not belong in a %s set", loc, s.Mode)}
		}
	}
	if s.Mode == Unknown {
		return &SchemaError{Msg: "unknown mode"}
	}
	return nil
}
