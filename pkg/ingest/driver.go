// Package ingest feeds group records into the entity graph.
//
// A record is a group label plus its member labels (a podcast and its
// hosts). The [Driver] materializes records through the store's creation
// funnel - one group node, one member node per label not seen before, one
// edge per membership - and then kicks the layout runner so the new
// structure relaxes into place.
//
// Records arrive three ways: replayed from a seed file ([LoadGroups]),
// replayed from the built-in demo ([SampleGroups]), or added one at a time
// from the TUI and web view ([Driver.AddGroup]). Replay paces groups with a
// configurable pause, which makes incremental ingestion visible in the
// animation.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skein/pkg/graph"
	"github.com/matzehuels/skein/pkg/observability"
)

// DefaultGroupPause is the think-time between replayed groups.
const DefaultGroupPause = 500 * time.Millisecond

// ErrMalformedRecord is returned for records that cannot be materialized:
// an empty group label or an empty member list (after trimming). Replay
// skips such records and keeps going; interactive adds surface the error.
var ErrMalformedRecord = errors.New("malformed group record")

// Kicker requests a layout run after the graph changed. The layout
// runner in pkg/physics implements it.
type Kicker interface {
	Kick()
}

// Driver materializes group records into a store and triggers layout runs.
// Fields may be adjusted before first use; a nil Kicker disables layout
// triggering (useful for synchronous exports that lay out once at the end).
type Driver struct {
	Store  *graph.Store
	Kicker Kicker

	// Pause is the delay between replayed groups. Zero replays without
	// pacing.
	Pause time.Duration

	Logger *log.Logger
}

// NewDriver returns a driver with the default replay pause. logger may be
// nil for silent operation.
func NewDriver(store *graph.Store, kicker Kicker, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Driver{
		Store:  store,
		Kicker: kicker,
		Pause:  DefaultGroupPause,
		Logger: logger,
	}
}

// Replay ingests a sequence of groups with Pause between consecutive
// records, then kicks the layout once. Malformed records are skipped with a
// warning; they never stop the replay. Returns ctx.Err() if cancelled
// mid-sequence, in which case no kick happens.
func (d *Driver) Replay(ctx context.Context, groups []Group) error {
	start := time.Now()
	ingested, skipped := 0, 0
	for i, g := range groups {
		if i > 0 && d.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.Pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.ingest(ctx, g); err != nil {
			skipped++
			continue
		}
		ingested++
	}

	observability.Ingest().OnReplayComplete(ctx, ingested, skipped, time.Since(start))
	nodes, edges := d.Store.Counts()
	d.Logger.Info("replay complete",
		"groups", ingested, "skipped", skipped,
		"nodes", nodes, "edges", edges, "duration", time.Since(start))
	if d.Kicker != nil {
		d.Kicker.Kick()
	}
	return nil
}

// AddGroup ingests a single group from a label and a comma-separated member
// list, then kicks the layout. This is the interactive-add path behind the
// TUI prompt and the web view's form. Returns the new group node's id, or
// [ErrMalformedRecord] if label or members are empty after trimming.
func (d *Driver) AddGroup(ctx context.Context, label, members string) (graph.NodeID, error) {
	g := Group{Label: label, Members: strings.Split(members, ",")}
	id, err := d.ingest(ctx, g)
	if err != nil {
		return "", err
	}
	if d.Kicker != nil {
		d.Kicker.Kick()
	}
	return id, nil
}

// ingest materializes one record and returns the group node's id.
func (d *Driver) ingest(ctx context.Context, g Group) (graph.NodeID, error) {
	clean, err := g.sanitized()
	if err != nil {
		observability.Ingest().OnRecordSkipped(ctx, g.Label, err)
		d.Logger.Warn("skipping malformed record", "label", g.Label, "error", err)
		return "", err
	}

	gid, err := d.Store.AddGroupNode(clean.Label)
	if err != nil {
		return "", err
	}
	for _, m := range clean.Members {
		mid, err := d.Store.AddOrGetMemberNode(m)
		if err != nil {
			return "", err
		}
		if _, err := d.Store.AddEdge(gid, mid); err != nil {
			return "", err
		}
	}

	observability.Ingest().OnGroupIngested(ctx, clean.Label, len(clean.Members))
	d.Logger.Debug("group ingested", "label", clean.Label, "members", len(clean.Members))
	return gid, nil
}

// sanitized trims the record and validates it: whitespace-only labels and
// members are dropped, and what remains must be a non-empty label with at
// least one member.
func (g Group) sanitized() (Group, error) {
	label := strings.TrimSpace(g.Label)
	if label == "" {
		return Group{}, fmt.Errorf("empty label: %w", ErrMalformedRecord)
	}
	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return Group{}, fmt.Errorf("group %q has no members: %w", label, ErrMalformedRecord)
	}
	return Group{Label: label, Members: members}, nil
}
