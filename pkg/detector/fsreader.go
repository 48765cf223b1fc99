package detector

import (
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirs are never descended into while scanning for markers
var skippedDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".pytest_cache": true,
	"dist":          true,
	"build":         true,
	"vendor":        true,
}

// FSReader provides filesystem operations abstracted over fs.FS
type FSReader struct {
	fsys  fs.FS
	files []string
	ready bool
}

// NewFSReader creates a new FSReader for the given filesystem
func NewFSReader(fsys fs.FS) *FSReader {
	return &FSReader{fsys: fsys}
}

// NewDirReader creates an FSReader rooted at a directory on disk
func NewDirReader(dir string) *FSReader {
	return NewFSReader(os.DirFS(dir))
}

// Has checks if a file exists at the given path
func (r *FSReader) Has(p string) bool {
	_, err := fs.Stat(r.fsys, p)
	return err == nil
}

// Read reads a file and returns its content as a string
func (r *FSReader) Read(p string) string {
	f, err := r.fsys.Open(p)
	if err != nil {
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(data)
}

// DirExists checks if a directory exists at the given path
func (r *FSReader) DirExists(p string) bool {
	fi, err := fs.Stat(r.fsys, p)
	return err == nil && fi.IsDir()
}

// Files returns every regular file below the root, skipping dependency and
// cache directories. The walk happens once per reader.
func (r *FSReader) Files() []string {
	if r.ready {
		return r.files
	}
	r.ready = true

	_ = fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != "." && skippedDirs[path.Base(p)] {
				return fs.SkipDir
			}
			return nil
		}
		r.files = append(r.files, p)
		return nil
	})
	return r.files
}

// Glob returns the scanned files matching a doublestar pattern such as
// "**/test_*.py"
func (r *FSReader) Glob(pattern string) []string {
	var matches []string
	for _, f := range r.Files() {
		if ok, _ := doublestar.Match(pattern, f); ok {
			matches = append(matches, f)
		}
	}
	return matches
}

// ContainsExt checks if any scanned file has the given extension
func (r *FSReader) ContainsExt(ext string) bool {
	for _, f := range r.Files() {
		if strings.HasSuffix(strings.ToLower(f), ext) {
			return true
		}
	}
	return false
}
