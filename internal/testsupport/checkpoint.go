package testsupport

import (
	"context"
	"testing"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/config"
)

// MustOpenStore opens the metadata cache under the config's checkpoint
// directory, failing the test on error and closing on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *checkpoint.Store {
	t.Helper()
	store, err := checkpoint.OpenStore(checkpoint.MetadataPath(cfg.Paths.CheckpointDir))
	if err != nil {
		t.Fatalf("open metadata store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SampleRecord builds a fully populated metadata record for the given id,
// suitable for seeding fixtures the integrity scan should pass.
func SampleRecord(id int64) checkpoint.Record {
	return checkpoint.Record{
		"id":           float64(id),
		"name":         "sample",
		"username":     "uploader",
		"uploader_id":  float64(42),
		"tags":         []any{"field-recording"},
		"description":  "a sound",
		"duration":     1.5,
		"filesize":     float64(2048),
		"type":         "wav",
		"channels":     float64(2),
		"samplerate":   float64(44100),
		"bitdepth":     float64(16),
		"bitrate":      float64(1411),
		"license":      "CC0",
		"created":      "2024-01-01T00:00:00Z",
		"downloads":    float64(10),
		"avg_rating":   4.5,
		"num_ratings":  float64(3),
		"num_comments": float64(1),
		"previews":     map[string]any{"preview-hq-mp3": "https://example.test/p.mp3"},
		"images":       map[string]any{"waveform_m": "https://example.test/w.png"},
		"pack":         "https://example.test/pack/1/",
		"geotag":       nil,
		"ac_analysis":  map[string]any{"ac_loudness": -20.0},
	}
}

// WriteCheckpoint materializes a consistent checkpoint fixture with the
// given sample ids as nodes, a chain of similarity edges between them, and
// one metadata record per node. Returns the checkpoint directory.
func WriteCheckpoint(t testing.TB, cfg *config.Config, sampleIDs ...int64) string {
	t.Helper()
	dir := cfg.Paths.CheckpointDir

	topo := checkpoint.NewTopology()
	for _, id := range sampleIDs {
		topo.AddNode(id, map[string]any{"name": "sample"})
	}
	for i := 1; i < len(sampleIDs); i++ {
		edge := checkpoint.Edge{
			Source: sampleIDs[i-1],
			Target: sampleIDs[i],
			Weight: 0.5,
			Type:   checkpoint.EdgeSimilar,
		}
		if err := topo.AddEdge(edge); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	if err := topo.Save(checkpoint.TopologyPath(dir)); err != nil {
		t.Fatalf("save topology: %v", err)
	}

	store := MustOpenStore(t, cfg)
	records := make(map[int64]checkpoint.Record, len(sampleIDs))
	for _, id := range sampleIDs {
		records[id] = SampleRecord(id)
	}
	if err := store.PutBatch(context.Background(), records); err != nil {
		t.Fatalf("seed records: %v", err)
	}

	manifest := checkpoint.NewManifest(topo, checkpoint.Cursor{Page: 1, Sort: "created desc"}, int64(len(sampleIDs)))
	if err := manifest.Save(checkpoint.ManifestPath(dir)); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	return dir
}
