package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pairbench/pairbench/internal/registry"
)

func writeCachedModel(t *testing.T, root, model string, size int) {
	t.Helper()
	dir := filepath.Join(root, registry.CacheDirName(model), "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "weights.bin"), make([]byte, size), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCleanupBenchmarkedModels(t *testing.T) {
	root := t.TempDir()
	writeCachedModel(t, root, "org/Winner-7B", 100)
	writeCachedModel(t, root, "org/Loser-3B", 200)
	writeCachedModel(t, root, "org/TextWinner-1B", 50)

	pairs := []ModelPair{
		{VisualModel: "org/Winner-7B", TextModel: "org/TextWinner-1B"},
		{VisualModel: "org/Loser-3B", TextModel: "org/TextWinner-1B"},
		{VisualModel: "org/NeverDownloaded-9B", TextModel: "org/TextWinner-1B"},
	}

	reclaimed, err := CleanupBenchmarkedModels(root, pairs, "org/Winner-7B", "org/TextWinner-1B")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if reclaimed != 200 {
		t.Fatalf("reclaimed = %d, want 200", reclaimed)
	}

	if _, err := os.Stat(filepath.Join(root, registry.CacheDirName("org/Winner-7B"))); err != nil {
		t.Fatal("winner cache must be kept")
	}
	if _, err := os.Stat(filepath.Join(root, registry.CacheDirName("org/TextWinner-1B"))); err != nil {
		t.Fatal("text winner cache must be kept")
	}
	if _, err := os.Stat(filepath.Join(root, registry.CacheDirName("org/Loser-3B"))); !os.IsNotExist(err) {
		t.Fatal("loser cache must be deleted")
	}
}

func TestDirectorySize(t *testing.T) {
	root := t.TempDir()
	if got := DirectorySize(filepath.Join(root, "missing")); got != 0 {
		t.Fatalf("missing path size = %d, want 0", got)
	}

	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", "one"), make([]byte, 10), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "two"), make([]byte, 32), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := DirectorySize(root); got != 42 {
		t.Fatalf("DirectorySize = %d, want 42", got)
	}
}
