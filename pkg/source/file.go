package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileProvider serves spec documents from a directory root. Names are
// interpreted relative to the root and must stay inside it; names that
// escape (absolute paths, ".." traversal) are rejected outright.
type FileProvider struct {
	root string
}

// NewFileProvider creates a provider rooted at the given directory.
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{root: root}
}

// Root returns the directory this provider reads from.
func (p *FileProvider) Root() string {
	return p.root
}

// Fetch reads the named document from the provider root.
func (p *FileProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, fmt.Errorf("document name cannot be empty")
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("document name %q escapes the provider root", name)
	}

	data, err := os.ReadFile(filepath.Join(p.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read document %q: %w", name, err)
	}
	return data, nil
}
