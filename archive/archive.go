// Package archive reads template bundles and writes export bundles. Bundles
// are plain zip files: a template (or html fragment) plus the images it
// references.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	zip "github.com/hidez8891/zip"
)

// MaxEntrySize limits size of a single entry read into memory.
const MaxEntrySize = 64 << 20

// WalkFunc is called for each file in archive visited by Walk. If an error
// is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits all regular files in the archive matching doublestar pattern,
// empty pattern matches everything. Archives with absolute entries or entries
// containing ".." are rejected as a whole.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("bad pattern %q", pattern)
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, name); !ok {
				continue
			}
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns content of archive entry.
func ReadFile(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q is too large (%d bytes)", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, MaxEntrySize))
}

// ReadAll loads every regular file of the archive keyed by cleaned name.
func ReadAll(archive string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	err := Walk(archive, "", func(_ string, f *zip.File) error {
		data, err := ReadFile(f)
		if err != nil {
			return fmt.Errorf("unable to read %q: %w", f.Name, err)
		}
		files[path.Clean(f.Name)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// File is a single entry of export bundle.
type File struct {
	Name string
	Data []byte
}

// Pack writes files into a new zip archive at dst. Entry names must be
// relative and unique.
func Pack(dst string, files []File) (err error) {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f.Name == "" || !isSafePath(f.Name) {
			return fmt.Errorf("bundle entry %q: unsafe path", f.Name)
		}
		if _, dup := seen[path.Clean(f.Name)]; dup {
			return fmt.Errorf("bundle entry %q: duplicate name", f.Name)
		}
		seen[path.Clean(f.Name)] = struct{}{}
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create bundle (%s): %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	w := zip.NewWriter(out)
	for _, f := range files {
		fw, err := w.Create(path.Clean(f.Name))
		if err != nil {
			return fmt.Errorf("unable to add %q to bundle: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("unable to write %q to bundle: %w", f.Name, err)
		}
	}
	return w.Close()
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths, drive letters and ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || len(name) > 1 && name[1] == ':' {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
