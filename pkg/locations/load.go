package locations

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spencer-p/hightides/pkg/tideschart"
)

const (
	urlsKey   = "URLs"
	urlKey    = "URL"
	searchKey = "MUNIs"
	queryKey  = "MUNI"
	hintKey   = "HINT"
)

// SchemaError reports a malformed locations file. Field names the offending
// entry, e.g. "MUNIs[1].HINT".
type SchemaError struct {
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "locations: " + e.Msg
	}
	return fmt.Sprintf("locations: %s: %s", e.Field, e.Msg)
}

// Load parses a locations document. Both the JSON form
//
//	{"URLs": [{"URL": "https://www.tideschart.com/..."}]}
//	{"MUNIs": [{"MUNI": "Salisbury, MA", "HINT": "/Essex-County/Salisbury/"}]}
//
// and its YAML spelling are accepted. A nil document yields Default.
// Validation stops at the first bad entry.
func Load(raw []byte) (Set, error) {
	if raw == nil {
		return Default(), nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Set{}, &SchemaError{Msg: fmt.Sprintf("not a JSON or YAML document: %v", err)}
	}

	urls, hasURLs := doc[urlsKey]
	searches, hasSearches := doc[searchKey]
	switch {
	case hasURLs && hasSearches:
		return Set{}, &SchemaError{Msg: fmt.Sprintf("only one of %q and %q may be given", urlsKey, searchKey)}
	case hasURLs:
		return loadEntries(DirectURL, urlsKey, urls, urlEntry)
	case hasSearches:
		return loadEntries(NamedSearch, searchKey, searches, searchEntry)
	default:
		return Set{}, &SchemaError{Msg: fmt.Sprintf("one of %q or %q is required", urlsKey, searchKey)}
	}
}

// ReadFile loads the locations file at path. An empty path yields Default.
func ReadFile(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read locations: %w", err)
	}
	return Load(raw)
}

type entryFunc func(field string, entry map[string]any) (Location, error)

func loadEntries(mode Mode, key string, value any, parse entryFunc) (Set, error) {
	list, ok := value.([]any)
	if !ok {
		return Set{}, &SchemaError{Field: key, Msg: "must be a list"}
	}
	if len(list) == 0 {
		return Set{}, &SchemaError{Field: key, Msg: "must not be empty"}
	}

	set := Set{Mode: mode, Locations: make([]Location, 0, len(list))}
	for i, item := range list {
		field := fmt.Sprintf("%s[%d]", key, i)
		entry, ok := item.(map[string]any)
		if !ok {
			return Set{}, &SchemaError{Field: field, Msg: "must be an object"}
		}
		loc, err := parse(field, entry)
		if err != nil {
			return Set{}, err
		}
		set.Locations = append(set.Locations, loc)
	}
	return set, nil
}

func urlEntry(field string, entry map[string]any) (Location, error) {
	u, err := stringField(field, entry, urlKey)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(u, tideschart.URLPrefix) {
		return nil, &SchemaError{Field: field + "." + urlKey, Msg: fmt.Sprintf("%q does not start with %s", u, tideschart.URLPrefix)}
	}
	return URL{URL: u}, nil
}

func searchEntry(field string, entry map[string]any) (Location, error) {
	query, err := stringField(field, entry, queryKey)
	if err != nil {
		return nil, err
	}
	hint, err := stringField(field, entry, hintKey)
	if err != nil {
		return nil, err
	}
	return Search{Query: query, Hint: hint}, nil
}

func stringField(field string, entry map[string]any, key string) (string, error) {
	v, ok := entry[key]
	if !ok {
		return "", &SchemaError{Field: field + "." + key, Msg: "is required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Field: field + "." + key, Msg: fmt.Sprintf("must be a string, got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &SchemaError{Field: field + "." + key, Msg: "must not be blank"}
	}
	return s, nil
}
