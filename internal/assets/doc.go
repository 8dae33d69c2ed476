// Package assets provides the html/template source and the stylesheet of
// the tweet card.
//
// The card has exactly two assets, CardTemplate and CardStyle. They are
// embedded in the binary and can be overridden from a directory:
//
//	{dir}/
//	├── templates/card.html   # executed with Style, Background, Avatar,
//	│                         # Name, Handle, Body, BodyHTML
//	└── styles/card.css
//
// Resolver serves each asset from the directory when present and from the
// embedded card otherwise. Asset names are fixed, so no caller-supplied
// name reaches the filesystem; Dir still rejects symlinks that leave the
// directory.
package assets
