package checkpoint_test

import (
	"os"
	"testing"
)

func writeFile(t testing.TB, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0o644)
}
