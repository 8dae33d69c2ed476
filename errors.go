package tweetcard

import "errors"

// Sentinel errors for library operations.
var (
	// Validation errors, reported inside *ValidationError.
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidField    = errors.New("invalid field")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidImageRef = errors.New("invalid image reference")
	ErrInvalidFormat   = errors.New("invalid body format")

	// Configuration errors.
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidOption    = errors.New("invalid option")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrTemplate         = errors.New("card template failed")

	// Asset errors.
	ErrAssetLoad = errors.New("failed to load image")

	// Render errors. The Generator wraps every rasterizer failure in ErrRender.
	ErrRender         = errors.New("render failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrScreenshot     = errors.New("screenshot failed")
	ErrEncode         = errors.New("PNG encoding failed")
)
