// Package storage is the flat-file persistence layer shared by every store.
// Each logical store owns one JSON file that is read and rewritten wholesale;
// writes are atomic replaces (temp file + rename) so a crash mid-write can
// never leave a half-written file behind.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Error reports a file I/O or decode failure with the original cause attached.
type Error struct {
	Op   string // "read", "write", "copy"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ReadJSON decodes the JSON file at path into v.
//
// A missing file is not an error: v is left untouched and (false, nil) is
// returned, mirroring the original system's "file missing, start empty"
// behavior. A file that exists but cannot be parsed also leaves v untouched
// and returns degraded=true so callers can surface the condition instead of
// silently starting over an existing data set.
func ReadJSON(path string, v any) (degraded bool, err error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: "read", Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, nil
	}
	return false, nil
}

// WriteJSON marshals v and atomically replaces the file at path.
// Output matches the original files: 4-space indent, no HTML escaping.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "write", Path: path, Err: err}
	}
	return nil
}

// CopyFile copies src to dst, replacing dst atomically. Used when installing
// a level's floor-plan image into the graphics directory.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &Error{Op: "copy", Path: src, Err: err}
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Op: "copy", Path: dst, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dst)+".tmp*")
	if err != nil {
		return &Error{Op: "copy", Path: dst, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &Error{Op: "copy", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "copy", Path: dst, Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return &Error{Op: "copy", Path: dst, Err: err}
	}
	return nil
}
