package client

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFrame(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
}
