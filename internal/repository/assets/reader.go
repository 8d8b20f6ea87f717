// Package assets reads catalog item images from the local filesystem for
// transport encoding.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reader resolves catalog asset paths under a fixed root directory. Paths
// that escape the root are rejected: the catalog table is data, not trusted
// input.
type Reader struct {
	root string
}

// New creates a Reader rooted at dir.
func New(dir string) *Reader {
	return &Reader{root: filepath.Clean(dir)}
}

// ReadAsset loads one asset by its catalog path.
func (r *Reader) ReadAsset(path string) ([]byte, error) {
	full := filepath.Join(r.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, r.root+string(filepath.Separator)) {
		return nil, fmt.Errorf("asset path %q escapes the asset root", path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", path, err)
	}
	return data, nil
}
