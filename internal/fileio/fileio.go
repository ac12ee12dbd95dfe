// Package fileio reads patch targets tolerant of byte-order marks and writes
// them back atomically as BOM-less UTF-8.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotUTF8 is returned for BOM-less content that is not valid UTF-8.
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// Read loads path and returns its text with any leading BOM removed. UTF-16
// files carrying a BOM are transcoded to UTF-8.
func Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := Decode(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Decode strips a UTF-8 BOM, transcodes BOM-marked UTF-16 and otherwise
// passes bytes through, rejecting invalid UTF-8.
func Decode(b []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), b)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", ErrNotUTF8
	}
	return string(out), nil
}

// WriteAtomic replaces path with text. The write goes to a temporary file in
// the same directory which is synced and renamed over the target, so readers
// see either the old or the new content. An existing file keeps its mode.
func WriteAtomic(path, text string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	tmp, f, err := createTempFile(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// createTempFile creates ".tmp-<base>-*" in dir so the rename stays on one
// filesystem. Caller closes the file.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
