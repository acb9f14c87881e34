package checkpoint_test

import (
	"os"
	"path/filepath"
	"testing"

	"samplegraph/internal/checkpoint"
	"samplegraph/internal/testsupport"
)

func TestBackupCopiesAllArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1, 2, 3)

	target, err := checkpoint.Backup(dir, cfg.Paths.BackupDir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	for _, name := range []string{checkpoint.TopologyFile, checkpoint.MetadataFile, checkpoint.ManifestFile} {
		copied := filepath.Join(target, name)
		info, err := os.Stat(copied)
		if err != nil {
			t.Fatalf("expected %s in backup: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("backup artifact %s is empty", name)
		}
	}
}

func TestBackupFailsOnIncompleteCheckpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteCheckpoint(t, cfg, 1)
	if err := os.Remove(checkpoint.ManifestPath(dir)); err != nil {
		t.Fatalf("remove manifest: %v", err)
	}

	if _, err := checkpoint.Backup(dir, cfg.Paths.BackupDir); err == nil {
		t.Fatal("expected backup of incomplete checkpoint to fail")
	}
}
