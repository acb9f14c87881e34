package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gowebpki/jcs"

	"samplegraph/internal/fileutil"
)

// Cursor records where pagination of the upstream sample listing stopped.
type Cursor struct {
	Page int    `json:"page"`
	Sort string `json:"sort"`
}

// Manifest is the small summary record accompanying a checkpoint. Its node
// and edge counts must match the topology; a mismatch is the canonical
// inconsistent-checkpoint failure.
type Manifest struct {
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	LastUpdated time.Time `json:"last_updated"`
	Cursor      Cursor    `json:"cursor"`
	APIRequests int64     `json:"api_requests"`
}

// NewManifest builds a manifest describing topo as of now.
func NewManifest(topo *Topology, cursor Cursor, apiRequests int64) Manifest {
	return Manifest{
		Nodes:       topo.NodeCount(),
		Edges:       topo.EdgeCount(),
		LastUpdated: time.Now().UTC(),
		Cursor:      cursor,
		APIRequests: apiRequests,
	}
}

// Save writes the manifest canonically (RFC 8785) so checkpoints committed to
// version control diff cleanly across runs.
func (m Manifest) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return fmt.Errorf("canonicalize manifest: %w", err)
	}
	if err := fileutil.WriteAtomic(path, canonical, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
