package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"samplegraph/internal/fileutil"
)

// EdgeType tags the relationship an edge represents.
type EdgeType string

const (
	EdgeSimilar  EdgeType = "similar"
	EdgeRemix    EdgeType = "remix"
	EdgeSamePack EdgeType = "same_pack"
	EdgeTag      EdgeType = "tag"
)

// ValidEdgeType reports whether t is one of the supported edge tags.
func ValidEdgeType(t EdgeType) bool {
	switch t {
	case EdgeSimilar, EdgeRemix, EdgeSamePack, EdgeTag:
		return true
	}
	return false
}

// Edge is a weighted, typed connection between two sample nodes.
type Edge struct {
	Source int64    `json:"source"`
	Target int64    `json:"target"`
	Weight float64  `json:"weight"`
	Type   EdgeType `json:"type"`
}

// Topology is the sample graph: nodes keyed by Freesound sample id with
// attribute maps, plus weighted typed edges. Serialized in node-link form
// so checkpoints written by earlier collector versions stay readable.
type Topology struct {
	Directed bool
	nodes    map[int64]map[string]any
	edges    map[edgeKey]Edge
}

type edgeKey struct {
	source int64
	target int64
	typ    EdgeType
}

// NewTopology creates an empty directed topology.
func NewTopology() *Topology {
	return &Topology{
		Directed: true,
		nodes:    make(map[int64]map[string]any),
		edges:    make(map[edgeKey]Edge),
	}
}

// AddNode inserts a node, merging attrs into any existing attribute map.
func (t *Topology) AddNode(id int64, attrs map[string]any) {
	existing, ok := t.nodes[id]
	if !ok {
		existing = make(map[string]any, len(attrs))
		t.nodes[id] = existing
	}
	for k, v := range attrs {
		existing[k] = v
	}
}

// HasNode reports whether the node exists.
func (t *Topology) HasNode(id int64) bool {
	_, ok := t.nodes[id]
	return ok
}

// NodeAttrs returns the attribute map for a node, or nil if absent.
func (t *Topology) NodeAttrs(id int64) map[string]any {
	return t.nodes[id]
}

// AddEdge inserts an edge after validating its weight and type. Both
// endpoints are created implicitly if absent. Re-adding an existing
// (source, target, type) triple replaces its weight.
func (t *Topology) AddEdge(e Edge) error {
	if e.Weight < 0 || e.Weight > 1 {
		return fmt.Errorf("edge weight %v out of range [0,1]", e.Weight)
	}
	if !ValidEdgeType(e.Type) {
		return fmt.Errorf("unsupported edge type %q", e.Type)
	}
	if !t.HasNode(e.Source) {
		t.AddNode(e.Source, nil)
	}
	if !t.HasNode(e.Target) {
		t.AddNode(e.Target, nil)
	}
	t.edges[edgeKey{e.Source, e.Target, e.Type}] = e
	return nil
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int {
	return len(t.nodes)
}

// EdgeCount returns the number of edges.
func (t *Topology) EdgeCount() int {
	return len(t.edges)
}

// NodeIDs returns all node ids in ascending order.
func (t *Topology) NodeIDs() []int64 {
	ids := make([]int64, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Edges returns all edges ordered by (source, target, type) for stable output.
func (t *Topology) Edges() []Edge {
	edges := make([]Edge, 0, len(t.edges))
	for _, e := range t.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}

type topologyNode struct {
	ID    int64          `json:"id"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type topologyDocument struct {
	Directed bool           `json:"directed"`
	Nodes    []topologyNode `json:"nodes"`
	Links    []Edge         `json:"links"`
}

// Save serializes the topology to path in node-link JSON form.
func (t *Topology) Save(path string) error {
	doc := topologyDocument{
		Directed: t.Directed,
		Nodes:    make([]topologyNode, 0, len(t.nodes)),
		Links:    t.Edges(),
	}
	for _, id := range t.NodeIDs() {
		attrs := t.nodes[id]
		if len(attrs) == 0 {
			attrs = nil
		}
		doc.Nodes = append(doc.Nodes, topologyNode{ID: id, Attrs: attrs})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal topology: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write topology: %w", err)
	}
	return nil
}

// LoadTopology reads a node-link JSON topology from path. Both directed and
// undirected documents are accepted; direction only affects downstream
// traversal, never storage.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}

	var doc topologyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}

	topo := NewTopology()
	topo.Directed = doc.Directed
	for _, node := range doc.Nodes {
		topo.AddNode(node.ID, node.Attrs)
	}
	for _, edge := range doc.Links {
		if err := topo.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("parse topology: edge %d->%d: %w", edge.Source, edge.Target, err)
		}
	}
	return topo, nil
}
