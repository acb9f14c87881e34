package checkpoint_test

import (
	"path/filepath"
	"testing"

	"samplegraph/internal/checkpoint"
)

func TestTopologyRoundTrip(t *testing.T) {
	topo := checkpoint.NewTopology()
	topo.AddNode(101, map[string]any{"name": "kick"})
	topo.AddNode(202, nil)
	if err := topo.AddEdge(checkpoint.Edge{Source: 101, Target: 202, Weight: 0.8, Type: checkpoint.EdgeSimilar}); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if err := topo.AddEdge(checkpoint.Edge{Source: 202, Target: 303, Weight: 1, Type: checkpoint.EdgeRemix}); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), checkpoint.TopologyFile)
	if err := topo.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := checkpoint.LoadTopology(path)
	if err != nil {
		t.Fatalf("LoadTopology failed: %v", err)
	}
	if loaded.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes (implicit endpoint included), got %d", loaded.NodeCount())
	}
	if loaded.EdgeCount() != 2 {
		t.Fatalf("expected 2 edges, got %d", loaded.EdgeCount())
	}
	if !loaded.HasNode(303) {
		t.Fatal("expected implicit node 303 to survive the round trip")
	}
	attrs := loaded.NodeAttrs(101)
	if attrs["name"] != "kick" {
		t.Fatalf("expected node attrs to survive, got %#v", attrs)
	}
}

func TestAddEdgeRejectsBadWeight(t *testing.T) {
	topo := checkpoint.NewTopology()
	err := topo.AddEdge(checkpoint.Edge{Source: 1, Target: 2, Weight: 1.5, Type: checkpoint.EdgeSimilar})
	if err == nil {
		t.Fatal("expected weight above 1 to be rejected")
	}
}

func TestAddEdgeRejectsUnknownType(t *testing.T) {
	topo := checkpoint.NewTopology()
	err := topo.AddEdge(checkpoint.Edge{Source: 1, Target: 2, Weight: 0.5, Type: "friendship"})
	if err == nil {
		t.Fatal("expected unsupported edge type to be rejected")
	}
}

func TestAddEdgeReplacesExisting(t *testing.T) {
	topo := checkpoint.NewTopology()
	edge := checkpoint.Edge{Source: 1, Target: 2, Weight: 0.2, Type: checkpoint.EdgeTag}
	if err := topo.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	edge.Weight = 0.9
	if err := topo.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge replace failed: %v", err)
	}
	if topo.EdgeCount() != 1 {
		t.Fatalf("expected re-add to replace, got %d edges", topo.EdgeCount())
	}
	if got := topo.Edges()[0].Weight; got != 0.9 {
		t.Fatalf("expected replaced weight 0.9, got %v", got)
	}
}

func TestLoadTopologyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), checkpoint.TopologyFile)
	if err := writeFile(t, path, "not json"); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := checkpoint.LoadTopology(path); err == nil {
		t.Fatal("expected parse error")
	}
}
