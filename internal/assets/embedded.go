package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/card.css templates/card.html
var builtin embed.FS

// Embedded serves the built-in card.
type Embedded struct{}

// Load reads a from the binary.
func (Embedded) Load(a Asset) (string, error) {
	if err := a.check(); err != nil {
		return "", err
	}
	content, err := builtin.ReadFile(a.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, a)
	}
	return string(content), nil
}

var _ Loader = Embedded{}
