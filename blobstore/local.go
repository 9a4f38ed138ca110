package blobstore

import (
	"context"
	"os"
	"path/filepath"
)

// Local implements Store on the local filesystem.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at the given directory. An empty
// root reads names as-is, so absolute sample paths work unchanged.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Read returns the file's contents. Samples are consumed exactly once, so a
// plain read beats mmap here.
func (s *Local) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.root != "" {
		name = filepath.Join(s.root, name)
	}
	return os.ReadFile(name)
}
