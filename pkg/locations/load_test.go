package locations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	table := []struct {
		name  string
		input string
		want  Set
	}{{
		name: "urls",
		input: `{"URLs": [
			{"URL": "https://www.tideschart.com/United-States/Massachusetts/Essex-County/Salisbury/"},
			{"URL": "https://www.tideschart.com/United-States/Massachusetts/Essex-County/Newburyport/"}
		]}`,
		want: Set{Mode: DirectURL, Locations: []Location{
			URL{URL: "https://www.tideschart.com/United-States/Massachusetts/Essex-County/Salisbury/"},
			URL{URL: "https://www.tideschart.com/United-States/Massachusetts/Essex-County/Newburyport/"},
		}},
	}, {
		name: "searches",
		input: `{"MUNIs": [
			{"MUNI": "Salisbury, MA", "HINT": "United-States/Massachusetts/Essex-County/Salisbury/"}
		]}`,
		want: Set{Mode: NamedSearch, Locations: []Location{
			Search{Query: "Salisbury, MA", Hint: "United-States/Massachusetts/Essex-County/Salisbury/"},
		}},
	}, {
		name: "yaml",
		input: `
MUNIs:
  - MUNI: "01950"
    HINT: /Essex-County/Newburyport/
`,
		want: Set{Mode: NamedSearch, Locations: []Location{
			Search{Query: "01950", Hint: "/Essex-County/Newburyport/"},
		}},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load([]byte(tc.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("incorrect set (-want,+got): %s", diff)
			}
		})
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	table := []struct {
		name      string
		input     string
		wantField string
	}{
		{"both keys", `{"URLs": [{"URL": "https://www.tideschart.com/a/"}], "MUNIs": [{"MUNI": "a", "HINT": "b"}]}`, ""},
		{"neither key", `{"Places": []}`, ""},
		{"empty document", ``, ""},
		{"not a document", `{"URLs": [`, ""},
		{"urls not a list", `{"URLs": "https://www.tideschart.com/a/"}`, "URLs"},
		{"empty list", `{"URLs": []}`, "URLs"},
		{"entry not an object", `{"URLs": ["https://www.tideschart.com/a/"]}`, "URLs[0]"},
		{"missing url", `{"URLs": [{"url": "https://www.tideschart.com/a/"}]}`, "URLs[0].URL"},
		{"url not a string", `{"URLs": [{"URL": 7}]}`, "URLs[0].URL"},
		{"wrong prefix", `{"URLs": [{"URL": "https://www.tideschart.com/a/"}, {"URL": "http://example.com/"}]}`, "URLs[1].URL"},
		{"missing hint", `{"MUNIs": [{"MUNI": "Salisbury, MA"}]}`, "MUNIs[0].HINT"},
		{"missing muni", `{"MUNIs": [{"HINT": "/Salisbury/"}]}`, "MUNIs[0].MUNI"},
		{"hint not a string", `{"MUNIs": [{"MUNI": "Salisbury, MA", "HINT": ["a"]}]}`, "MUNIs[0].HINT"},
		{"blank hint", `{"MUNIs": [{"MUNI": "Salisbury, MA", "HINT": "  "}]}`, "MUNIs[0].HINT"},
		{"mixed entries", `{"MUNIs": [{"MUNI": "Salisbury, MA", "HINT": "/Salisbury/"}, {"URL": "https://www.tideschart.com/a/"}]}`, "MUNIs[1].MUNI"},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.input))
			var serr *SchemaError
			if !errors.As(err, &serr) {
				t.Fatalf("got %v, want *SchemaError", err)
			}
			if serr.Field != tc.wantField {
				t.Errorf("SchemaError.Field = %q, want %q (%v)", serr.Field, tc.wantField, err)
			}
		})
	}
}

func TestLoadDefault(t *testing.T) {
	got, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Mode != DirectURL {
		t.Errorf("default mode %s, want %s", got.Mode, DirectURL)
	}
	if len(got.Locations) != 6 {
		t.Errorf("got %d default locations, want 6", len(got.Locations))
	}

	// The built in lists must pass their own validation.
	for _, set := range []Set{Default(), DefaultSearches()} {
		for _, loc := range set.Locations {
			switch l := loc.(type) {
			case URL:
				if _, err := urlEntry("default", map[string]any{urlKey: l.URL}); err != nil {
					t.Errorf("default %q invalid: %v", l.URL, err)
				}
			case Search:
				if _, err := searchEntry("default", map[string]any{queryKey: l.Query, hintKey: l.Hint}); err != nil {
					t.Errorf("default %q invalid: %v", l.Query, err)
				}
			}
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	if err := os.WriteFile(path, []byte(`{"URLs": [{"URL": "https://www.tideschart.com/x/"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"https://www.tideschart.com/x/"}, got.Keys()); diff != "" {
		t.Errorf("keys (-want,+got): %s", diff)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, want os.ErrNotExist", err)
	}
}

func TestSetValidate(t *testing.T) {
	table := []struct {
		name    string
		set     Set
		wantErr bool
	}{
		{"default urls", Default(), false},
		{"default searches", DefaultSearches(), false},
		{"unknown mode", Set{}, true},
		{"mixed", Set{Mode: DirectURL, Locations: []Location{URL{URL: "a"}, Search{Query: "b", Hint: "c"}}}, true},
		{"wrong mode", Set{Mode: NamedSearch, Locations: []Location{URL{URL: "a"}}}, true},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.set.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}
