package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalSnapshot converts a snapshot to indented JSON bytes. Node order is
// the store's insertion order, so marshalling the same graph twice yields
// identical bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshot writes a snapshot as indented JSON to w. This is the wire
// format served by the web view and emitted by the JSON export.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
