package checkpoint

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/kaptinlin/jsonschema"
)

// FailureKind classifies why a checkpoint failed verification.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureMissingFile   FailureKind = "missing_file"
	FailureEmptyFile     FailureKind = "empty_file"
	FailureParseError    FailureKind = "parse_error"
	FailureEmptyGraph    FailureKind = "empty_graph"
	FailureEmptyCache    FailureKind = "empty_cache"
	FailureCountMismatch FailureKind = "count_mismatch"
)

// Result reports the outcome of a verification pass.
type Result struct {
	OK      bool
	Kind    FailureKind
	Message string
}

func failure(kind FailureKind, format string, args ...any) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

//go:embed manifest_schema.json
var manifestSchemaJSON []byte

var manifestSchema = mustCompileManifestSchema()

func mustCompileManifestSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(manifestSchemaJSON)
	if err != nil {
		panic(fmt.Sprintf("compile manifest schema: %v", err))
	}
	return schema
}

// Verify runs the cheap, read-only precondition check on a checkpoint
// directory: all three artifacts exist, are non-empty, parse, and contain at
// least one entity. It never mutates the checkpoint and is safe to call
// repeatedly and concurrently without holding the checkpoint lock.
func Verify(ctx context.Context, dir string) Result {
	for _, path := range ArtifactPaths(dir) {
		info, err := os.Stat(path)
		if err != nil {
			return failure(FailureMissingFile, "required artifact missing: %s", path)
		}
		if info.Size() == 0 {
			return failure(FailureEmptyFile, "required artifact is empty: %s", path)
		}
	}

	manifestRaw, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		return failure(FailureMissingFile, "read manifest: %v", err)
	}
	if result := manifestSchema.ValidateJSON(manifestRaw); !result.IsValid() {
		return failure(FailureParseError, "manifest does not match schema: %v", result.Errors)
	}
	if _, err := LoadManifest(ManifestPath(dir)); err != nil {
		return failure(FailureParseError, "manifest: %v", err)
	}

	topo, err := LoadTopology(TopologyPath(dir))
	if err != nil {
		return failure(FailureParseError, "topology: %v", err)
	}
	if topo.NodeCount() == 0 {
		return failure(FailureEmptyGraph, "topology has zero nodes: %s", TopologyPath(dir))
	}

	store, err := OpenStoreReadOnly(MetadataPath(dir))
	if err != nil {
		return failure(FailureParseError, "metadata cache: %v", err)
	}
	defer store.Close()

	hasTable, err := store.HasMetadataTable(ctx)
	if err != nil {
		return failure(FailureParseError, "metadata cache: %v", err)
	}
	if !hasTable {
		return failure(FailureParseError, "metadata cache has no metadata table: %s", MetadataPath(dir))
	}
	count, err := store.Count(ctx)
	if err != nil {
		return failure(FailureParseError, "metadata cache: %v", err)
	}
	if count == 0 {
		return failure(FailureEmptyCache, "metadata cache has zero rows: %s", MetadataPath(dir))
	}

	return Result{OK: true, Message: fmt.Sprintf("checkpoint ok: %d nodes, %d records", topo.NodeCount(), count)}
}

// CheckConsistency compares the manifest counts against the topology. A
// mismatch means a writer updated one artifact without the other, usually a
// partial or unserialized concurrent write.
func CheckConsistency(dir string) Result {
	manifest, err := LoadManifest(ManifestPath(dir))
	if err != nil {
		return failure(FailureParseError, "manifest: %v", err)
	}
	topo, err := LoadTopology(TopologyPath(dir))
	if err != nil {
		return failure(FailureParseError, "topology: %v", err)
	}

	if manifest.Nodes != topo.NodeCount() {
		return failure(FailureCountMismatch,
			"node count mismatch: manifest reports %d, topology has %d", manifest.Nodes, topo.NodeCount())
	}
	if manifest.Edges != topo.EdgeCount() {
		return failure(FailureCountMismatch,
			"edge count mismatch: manifest reports %d, topology has %d", manifest.Edges, topo.EdgeCount())
	}
	return Result{OK: true, Message: fmt.Sprintf("counts consistent: %d nodes, %d edges", manifest.Nodes, manifest.Edges)}
}
