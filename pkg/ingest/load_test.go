package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadGroupsTOML(t *testing.T) {
	path := writeSeed(t, "shows.toml", `
[[groups]]
label = "The Greatest Generation"
members = ["Ben", "Adam"]

[[groups]]
label = "Friendly Fire"
members = ["Ben", "Adam", "Rod"]
`)

	groups, err := LoadGroups(path)
	if err != nil {
		t.Fatalf("LoadGroups() error = %v", err)
	}

	want := []Group{
		{Label: "The Greatest Generation", Members: []string{"Ben", "Adam"}},
		{Label: "Friendly Fire", Members: []string{"Ben", "Adam", "Rod"}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("LoadGroups() = %+v, want %+v", groups, want)
	}
}

func TestLoadGroupsJSON(t *testing.T) {
	path := writeSeed(t, "shows.json", `[
  {"label": "The Greatest Generation", "members": ["Ben", "Adam"]},
  {"label": "Friendly Fire", "members": ["Ben", "Adam", "Rod"]}
]`)

	groups, err := LoadGroups(path)
	if err != nil {
		t.Fatalf("LoadGroups() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("group count = %d, want 2", len(groups))
	}
	if groups[1].Label != "Friendly Fire" || len(groups[1].Members) != 3 {
		t.Errorf("groups[1] = %+v, want Friendly Fire with 3 members", groups[1])
	}
}

func TestLoadGroupsFormatsAgree(t *testing.T) {
	tomlPath := writeSeed(t, "shows.toml", `
[[groups]]
label = "Back to Work"
members = ["Merlin", "Dan"]
`)
	jsonPath := writeSeed(t, "shows.json",
		`[{"label": "Back to Work", "members": ["Merlin", "Dan"]}]`)

	fromTOML, err := LoadGroups(tomlPath)
	if err != nil {
		t.Fatalf("LoadGroups(toml) error = %v", err)
	}
	fromJSON, err := LoadGroups(jsonPath)
	if err != nil {
		t.Fatalf("LoadGroups(json) error = %v", err)
	}
	if !reflect.DeepEqual(fromTOML, fromJSON) {
		t.Errorf("formats disagree: toml %+v, json %+v", fromTOML, fromJSON)
	}
}

func TestLoadGroupsErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.toml")
		}},
		{"unsupported extension", func(t *testing.T) string {
			return writeSeed(t, "shows.yaml", "groups: []")
		}},
		{"broken toml", func(t *testing.T) string {
			return writeSeed(t, "shows.toml", "[[groups]\nlabel = ")
		}},
		{"broken json", func(t *testing.T) string {
			return writeSeed(t, "shows.json", `{"label": "not an array"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadGroups(tt.path(t)); err == nil {
				t.Error("LoadGroups() = nil, want error")
			}
		})
	}
}

func TestSampleGroupsAreWellFormed(t *testing.T) {
	groups := SampleGroups()
	if len(groups) < 2 {
		t.Fatalf("sample has %d groups, want at least 2", len(groups))
	}

	seen := map[string]int{}
	for _, g := range groups {
		clean, err := g.sanitized()
		if err != nil {
			t.Errorf("sample group %q is malformed: %v", g.Label, err)
		}
		for _, m := range clean.Members {
			seen[m]++
		}
	}

	// The demo only demonstrates dedup if hosts actually overlap.
	shared := 0
	for _, n := range seen {
		if n > 1 {
			shared++
		}
	}
	if shared == 0 {
		t.Error("sample groups share no members; dedup would be invisible")
	}
}
