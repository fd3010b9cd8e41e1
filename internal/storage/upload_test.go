package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// recordingStorage captures uploads so the helper can be exercised without a
// live bucket.
type recordingStorage struct {
	uploads map[string][]byte
}

func (s *recordingStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (s *recordingStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (s *recordingStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[key] = data
	return nil
}

func TestUploadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "products.csv"), "id,name\np-1,Widget\n")
	writeFile(t, filepath.Join(dir, "2025", "movements.csv"), "product_id,entry_type,change\np-1,sale,-2\n")

	store := &recordingStorage{}
	count, err := UploadDirectory(context.Background(), store, dir, "seeds/")
	if err != nil {
		t.Fatalf("UploadDirectory: %v", err)
	}
	if count != 2 {
		t.Fatalf("uploaded %d objects, want 2", count)
	}

	if got := string(store.uploads["seeds/products.csv"]); got != "id,name\np-1,Widget\n" {
		t.Errorf("seeds/products.csv content = %q", got)
	}
	if _, ok := store.uploads["seeds/2025/movements.csv"]; !ok {
		t.Errorf("nested file not uploaded under its relative path, got keys %v", keysOf(store.uploads))
	}
}

func TestUploadDirectoryNoPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "catalog.csv"), "id,name\n")

	store := &recordingStorage{}
	if _, err := UploadDirectory(context.Background(), store, dir, ""); err != nil {
		t.Fatalf("UploadDirectory: %v", err)
	}
	if _, ok := store.uploads["catalog.csv"]; !ok {
		t.Errorf("empty prefix should keep the bare relative key, got %v", keysOf(store.uploads))
	}
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix, rel, want string
	}{
		{"seeds/", "products.csv", "seeds/products.csv"},
		{"seeds", "products.csv", "seeds/products.csv"},
		{"", "products.csv", "products.csv"},
		{" seeds/ ", "a/b.csv", "seeds/a/b.csv"},
	}
	for _, c := range cases {
		if got := objectKey(c.prefix, c.rel); got != c.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", c.prefix, c.rel, got, c.want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
