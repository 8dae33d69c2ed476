package assets

import (
	"errors"
	"fmt"
	"path"
)

// Sentinel errors for asset loading.
var (
	ErrUnknownAsset    = errors.New("unknown card asset")
	ErrAssetNotFound   = errors.New("card asset not found")
	ErrInvalidBasePath = errors.New("invalid asset directory")
	ErrAssetRead       = errors.New("failed to read card asset")
	ErrPathTraversal   = errors.New("asset path escapes the asset directory")
)

// Asset is one file of the card: its html/template source or its stylesheet.
type Asset struct {
	dir  string
	file string
}

// The card's assets. No other Asset value loads.
var (
	CardTemplate = Asset{dir: "templates", file: "card.html"}
	CardStyle    = Asset{dir: "styles", file: "card.css"}
)

// String returns the asset's path relative to an asset directory.
func (a Asset) String() string {
	return path.Join(a.dir, a.file)
}

func (a Asset) check() error {
	if a != CardTemplate && a != CardStyle {
		return fmt.Errorf("%w: %q", ErrUnknownAsset, a.String())
	}
	return nil
}

// Loader reads card assets.
type Loader interface {
	// Load returns the content of a. Returns ErrAssetNotFound when the
	// source does not provide it and ErrUnknownAsset for values other
	// than CardTemplate and CardStyle.
	Load(a Asset) (string, error)
}

// Card loads the card template and style from l.
func Card(l Loader) (tmpl, style string, err error) {
	if tmpl, err = l.Load(CardTemplate); err != nil {
		return "", "", err
	}
	if style, err = l.Load(CardStyle); err != nil {
		return "", "", err
	}
	return tmpl, style, nil
}
