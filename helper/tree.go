package helper

import (
	"os"
	"path/filepath"
	"testing"
)

// TestTree writes files into a fresh temporary directory and returns its
// path. Keys are slash-separated paths relative to the root.
//
// Example:
//
//	root := helper.TestTree(t, map[string]string{
//	    "lint.hcl":     `disable = ["Security"]`,
//	    "app/lint.yml": "enable: [Security]\n",
//	})
func TestTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %s", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %s", name, err)
		}
	}
	return root
}
