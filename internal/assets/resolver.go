package assets

import "errors"

// Resolver loads each card asset from an override directory when it has
// one, and from the built-in card otherwise. Overriding only the style
// keeps the built-in template, and the reverse.
type Resolver struct {
	custom *Dir // nil without an override directory
}

// NewResolver creates a Resolver. An empty dir serves only the built-in
// card; a dir that cannot be opened returns ErrInvalidBasePath.
func NewResolver(dir string) (*Resolver, error) {
	if dir == "" {
		return &Resolver{}, nil
	}
	d, err := NewDir(dir)
	if err != nil {
		return nil, err
	}
	return &Resolver{custom: d}, nil
}

// Load returns the override of a, or the built-in one when the override
// directory lacks it. Read and traversal errors do not fall back.
func (r *Resolver) Load(a Asset) (string, error) {
	if r.custom != nil {
		content, err := r.custom.Load(a)
		if !errors.Is(err, ErrAssetNotFound) {
			return content, err
		}
	}
	return Embedded{}.Load(a)
}

// Overridden reports whether an override directory is configured.
func (r *Resolver) Overridden() bool {
	return r.custom != nil
}

var _ Loader = (*Resolver)(nil)
