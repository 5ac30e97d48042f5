package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Group is one ingestable record: a group entity and its member labels.
type Group struct {
	Label   string   `toml:"label" json:"label"`
	Members []string `toml:"members" json:"members"`
}

// seedFile is the TOML seed layout: a list of [[groups]] tables.
type seedFile struct {
	Groups []Group `toml:"groups"`
}

// LoadGroups reads group records from a seed file. The format follows the
// extension: .toml expects [[groups]] tables, .json expects a top-level
// array of objects. Records are returned as-is; validation happens at
// ingest time so a bad record skips, not fails, the replay.
func LoadGroups(path string) ([]Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var f seedFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return f.Groups, nil
	case ".json":
		var groups []Group
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return groups, nil
	default:
		return nil, fmt.Errorf("unsupported seed format %q (use .toml or .json)", filepath.Ext(path))
	}
}

// SampleGroups returns the built-in podcast demo. The shows share hosts, so
// member dedup and the resulting cross-links are visible within the first
// few replayed groups.
func SampleGroups() []Group {
	return []Group{
		{Label: "The Greatest Generation", Members: []string{"Ben", "Adam"}},
		{Label: "Friendly Fire", Members: []string{"Ben", "Adam", "Rod"}},
		{Label: "Roderick on the Line", Members: []string{"Rod", "Merlin"}},
		{Label: "Back to Work", Members: []string{"Merlin", "Dan"}},
		{Label: "Reconcilable Differences", Members: []string{"Merlin", "John"}},
		{Label: "Do By Friday", Members: []string{"Merlin", "Alex", "Max"}},
	}
}
