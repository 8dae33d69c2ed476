package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir serves card assets from a directory laid out like the built-in ones:
// templates/card.html and styles/card.css. Either file may be absent.
type Dir struct {
	root string
}

// NewDir opens root. Returns ErrInvalidBasePath unless root is a readable
// directory. Symlinks in root itself are resolved once here.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &Dir{root: abs}, nil
}

// Root returns the resolved directory.
func (d *Dir) Root() string {
	return d.root
}

// Load reads a from the directory. A symlink leading outside the
// directory returns ErrPathTraversal.
func (d *Dir) Load(a Asset) (string, error) {
	if err := a.check(); err != nil {
		return "", err
	}

	p := filepath.Join(d.root, a.dir, a.file)
	if err := d.contain(p); err != nil {
		return "", err
	}

	content, err := os.ReadFile(p) // #nosec G304 -- fixed name under a contained root
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s in %s", ErrAssetNotFound, a, d.root)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, a, err)
	}
	return string(content), nil
}

// contain checks that p, after symlink resolution, stays under the root.
// A missing file passes; reading it reports not found.
func (d *Dir) contain(p string) error {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	if !strings.HasPrefix(p, d.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return nil
}

var _ Loader = (*Dir)(nil)
