package checkpoint

import "path/filepath"

// Artifact file names inside a checkpoint directory. The three files together
// form one checkpoint; partial sets are treated as corrupt.
const (
	TopologyFile = "graph_topology.json"
	MetadataFile = "metadata_cache.db"
	ManifestFile = "checkpoint_metadata.json"
)

// TopologyPath returns the graph topology path for a checkpoint directory.
func TopologyPath(dir string) string {
	return filepath.Join(dir, TopologyFile)
}

// MetadataPath returns the metadata cache path for a checkpoint directory.
func MetadataPath(dir string) string {
	return filepath.Join(dir, MetadataFile)
}

// ManifestPath returns the manifest path for a checkpoint directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestFile)
}

// ArtifactPaths lists all three artifact paths for a checkpoint directory.
func ArtifactPaths(dir string) []string {
	return []string{TopologyPath(dir), MetadataPath(dir), ManifestPath(dir)}
}
