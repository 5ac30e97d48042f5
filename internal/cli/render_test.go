package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/physics"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"png", "png", false},
		{"dot", "dot", false},
		{"json", "json", false},
		{"invalid", "pdf", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		args   []string
		format string
		want   string
	}{
		{"explicit out wins", "custom.svg", []string{"seed.toml"}, "svg", "custom.svg"},
		{"derived from seed", "", []string{"podcasts.toml"}, "svg", "podcasts.svg"},
		{"derived strips directory", "", []string{"examples/groups/podcasts.toml"}, "png", "podcasts.png"},
		{"built-in sample", "", nil, "svg", "skein.svg"},
		{"json extension", "", []string{"seed.json"}, "json", "seed.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.args, tt.format)
			if got != tt.want {
				t.Errorf("outputPath(%q, %v, %q) = %q, want %q",
					tt.output, tt.args, tt.format, got, tt.want)
			}
		})
	}
}

func TestRenderSnapshotDOT(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Label: "A", Category: graph.CategoryGroup, Pos: graph.Point{X: 100, Y: 100}},
			{ID: "b", Label: "B", Category: graph.CategoryMember, Pos: graph.Point{X: 200, Y: 200}},
		},
		Edges: []graph.Edge{{From: "a", To: "b"}},
	}
	cfg := physics.Config{}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	data, err := renderSnapshot(s, formatDOT, cfg)
	if err != nil {
		t.Fatalf("renderSnapshot(dot) error = %v", err)
	}
	dot := string(data)
	if !strings.Contains(dot, "graph G {") {
		t.Error("DOT output should contain graph header")
	}
	if !strings.Contains(dot, `"a" -- "b"`) {
		t.Error("DOT output should contain the edge")
	}
}

func TestRenderSnapshotJSON(t *testing.T) {
	s := graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Label: "A", Category: graph.CategoryGroup, Pos: graph.Point{X: 10, Y: 20}},
		},
	}
	cfg := physics.Config{}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	data, err := renderSnapshot(s, formatJSON, cfg)
	if err != nil {
		t.Fatalf("renderSnapshot(json) error = %v", err)
	}
	var decoded struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Nodes) != 1 || decoded.Nodes[0].ID != "a" {
		t.Errorf("decoded nodes = %+v, want one node with id a", decoded.Nodes)
	}
}

func TestRenderSnapshotUnknownFormat(t *testing.T) {
	cfg := physics.Config{}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if _, err := renderSnapshot(graph.Snapshot{}, "gif", cfg); err == nil {
		t.Error("renderSnapshot should reject unknown formats")
	}
}
