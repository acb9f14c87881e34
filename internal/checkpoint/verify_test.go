package checkpoint_test

import (
	"context"
	"os"
	"testing"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/testsupport"
)

func TestVerifyPassesConsistentCheckpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2, 3, 4, 5)

	result := checkpoint.Verify(context.Background(), dir)
	if !result.OK {
		t.Fatalf("expected verification to pass, got %s: %s", result.Kind, result.Message)
	}

	consistency := checkpoint.CheckConsistency(dir)
	if !consistency.OK {
		t.Fatalf("expected consistency to pass, got %s", consistency.Message)
	}
}

func TestVerifyMissingArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2)
	if err := os.Remove(checkpoint.TopologyPath(dir)); err != nil {
		t.Fatalf("remove topology: %v", err)
	}

	result := checkpoint.Verify(context.Background(), dir)
	if result.OK || result.Kind != checkpoint.FailureMissingFile {
		t.Fatalf("expected missing_file failure, got %+v", result)
	}
}

func TestVerifyEmptyArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2)
	if err := os.Truncate(checkpoint.ManifestPath(dir), 0); err != nil {
		t.Fatalf("truncate manifest: %v", err)
	}

	result := checkpoint.Verify(context.Background(), dir)
	if result.OK || result.Kind != checkpoint.FailureEmptyFile {
		t.Fatalf("expected empty_file failure, got %+v", result)
	}
}

func TestVerifyCorruptManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2)
	if err := writeFile(t, checkpoint.ManifestPath(dir), `{"nodes":"two"}`); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	result := checkpoint.Verify(context.Background(), dir)
	if result.OK || result.Kind != checkpoint.FailureParseError {
		t.Fatalf("expected parse_error failure, got %+v", result)
	}
}

func TestVerifyEmptyGraph(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2)
	if err := writeFile(t, checkpoint.TopologyPath(dir), `{"directed":true,"nodes":[],"links":[]}`); err != nil {
		t.Fatalf("write topology: %v", err)
	}

	result := checkpoint.Verify(context.Background(), dir)
	if result.OK || result.Kind != checkpoint.FailureEmptyGraph {
		t.Fatalf("expected empty_graph failure, got %+v", result)
	}
}

func TestVerifyDoesNotMutate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2, 3)

	before, err := os.ReadFile(checkpoint.ManifestPath(dir))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	for i := 0; i < 3; i++ {
		if result := checkpoint.Verify(context.Background(), dir); !result.OK {
			t.Fatalf("verification failed on pass %d: %s", i, result.Message)
		}
	}

	after, err := os.ReadFile(checkpoint.ManifestPath(dir))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("verify mutated the manifest")
	}
}

func TestCheckConsistencyDetectsCountMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2, 3, 4, 5)

	manifest, err := checkpoint.LoadManifest(checkpoint.ManifestPath(dir))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if manifest.Nodes != 5 || manifest.Edges != 4 {
		t.Fatalf("unexpected fixture counts: %d nodes, %d edges", manifest.Nodes, manifest.Edges)
	}

	manifest.Nodes = 6
	if err := manifest.Save(checkpoint.ManifestPath(dir)); err != nil {
		t.Fatalf("save manifest: %v", err)
	}

	result := checkpoint.CheckConsistency(dir)
	if result.OK || result.Kind != checkpoint.FailureCountMismatch {
		t.Fatalf("expected count_mismatch failure, got %+v", result)
	}
}
