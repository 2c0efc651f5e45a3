package file

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestSearchDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "20240101")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "a.bd"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(sub, "b.bd"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := SearchDir(dir, func(p string) bool { return strings.HasSuffix(p, ".bd") })
	if err != nil {
		t.Fatalf("SearchDir: %v", err)
	}
	sort.Strings(got)
	want := []string{filepath.Join(dir, "20240101", "b.bd"), filepath.Join(dir, "a.bd")}
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("SearchDir = %v, want %v", got, want)
	}
}

func TestSearchDirMissing(t *testing.T) {
	if _, err := SearchDir(filepath.Join(t.TempDir(), "missing"), func(string) bool { return true }); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	events := make(chan FileEvent, 16)
	w, err := Watch(dir, func(e FileEvent) { events <- e })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "new.bd")
	if err = os.WriteFile(path, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-events:
		if e.Filepath != path {
			t.Fatalf("event for %s, want %s", e.Filepath, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no file event received")
	}
}
