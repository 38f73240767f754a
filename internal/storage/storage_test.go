package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadJSONMissingFile(t *testing.T) {
	var v map[string]int
	degraded, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &v)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if degraded {
		t.Fatal("missing file must not be degraded")
	}
	if v != nil {
		t.Fatalf("target must stay untouched, got %v", v)
	}
}

func TestReadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	v := map[string]int{"keep": 1}
	degraded, err := ReadJSON(path, &v)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !degraded {
		t.Fatal("unparsable file must be degraded")
	}
	if v["keep"] != 1 {
		t.Fatal("target must stay untouched on a corrupt file")
	}
}

func TestWriteJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.json")
	if err := WriteJSON(path, map[string]string{"q": "a < b"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "    \"q\"") {
		t.Fatalf("expected four-space indentation, got:\n%s", data)
	}
	if strings.Contains(string(data), "\\u003c") {
		t.Fatalf("HTML escaping must be off, got:\n%s", data)
	}
}

func TestWriteJSONReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := WriteJSON(path, []int{1}); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(path, []int{1, 2}); err != nil {
		t.Fatal(err)
	}

	var v []int
	if degraded, err := ReadJSON(path, &v); err != nil || degraded {
		t.Fatalf("round-trip: degraded=%v err=%v", degraded, err)
	}
	if len(v) != 2 {
		t.Fatalf("round-trip lost data: %v", v)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "graphics", "dst.png")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("copy mismatch: %q", data)
	}
}
