// Package snapshot defines the save-data captured from a running
// interpreter and its persisted JSON form. In memory a Snapshot is an
// ordinary struct; on disk it is a versioned JSON document validated
// against an embedded schema before decoding, so a corrupt or
// incompatible file is rejected instead of silently corrupting a
// restored interpreter.
package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// Version is the current persisted-format version. Documents carrying any
// other version are rejected on decode.
const Version = 1

//go:embed schema.json
var schemaJSON []byte

// StepKind tells how a path step descends into a nested block.
type StepKind string

const (
	StepThen   StepKind = "then"
	StepElse   StepKind = "else"
	StepOption StepKind = "option"
)

// PathStep records one descent into a nested statement block: the statement
// index inside its block, and which branch or option body was entered.
type PathStep struct {
	Index  int      `json:"index"`
	Kind   StepKind `json:"kind"`
	Option int      `json:"option,omitempty"`
}

// Position is a full execution coordinate: a beat, the descent path into its
// nested blocks, and the cursor (next statement index) in the innermost
// block.
type Position struct {
	Beat string `json:"beat"`
	// omitempty: a save taken in a beat's root block has no descent path,
	// and the schema accepts an absent key but not null.
	Path   []PathStep `json:"path,omitempty"`
	Cursor int        `json:"cursor"`
}

// Snapshot is the complete continuation state of an interpreter. It never
// references the Script tree itself; Fingerprint ties it to any structurally
// compatible script.
type Snapshot struct {
	Version     int                       `json:"version"`
	ID          string                    `json:"id"`
	Fingerprint string                    `json:"fingerprint"`
	Position    Position                  `json:"position"`
	Pending     string                    `json:"pending,omitempty"`
	Vars        map[string]any            `json:"vars"`
	Characters  map[string]map[string]any `json:"characters"`
}

// New creates an empty snapshot with a fresh id and the current version.
func New(fingerprint string) *Snapshot {
	return &Snapshot{
		Version:     Version,
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		Vars:        map[string]any{},
		Characters:  map[string]map[string]any{},
	}
}

// Encode serialises the snapshot to its persisted JSON form.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses and validates a persisted snapshot document. The document is
// checked against the embedded schema first; a schema or version mismatch is
// an error, never a partial result.
func Decode(data []byte) (*Snapshot, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: validate: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("snapshot: invalid document: %s", first.String())
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d (want %d)", snap.Version, Version)
	}
	return &snap, nil
}
