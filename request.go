package tweetcard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-tweetcard/internal/imagefetch"
	"github.com/alnah/go-tweetcard/internal/pipeline"
)

// Field limits, in runes.
const (
	MaxNameLength   = 100
	MaxHandleLength = 50
	MaxBodyLength   = 500
)

// Field names as they appear on the wire and in errors.
const (
	FieldName         = "name"
	FieldHandle       = "handle"
	FieldBody         = "body"
	FieldProfileImage = "profileImage"
	FieldBackground   = "background"
	FieldFormat       = "format"
)

// BodyFormat selects how the body text is interpreted.
type BodyFormat string

// Body formats.
const (
	FormatText     BodyFormat = "text"
	FormatMarkdown BodyFormat = "markdown"
)

// Fields is the raw input of a render, as received from a transport.
// Body is an alias for Tweet; Tweet wins when both are set.
type Fields struct {
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	Tweet        string `json:"tweet,omitempty"`
	Body         string `json:"body,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Background   string `json:"background,omitempty"`
	Format       string `json:"format,omitempty"`
}

// Request is a validated, normalized set of fields driving one render.
type Request struct {
	DisplayName     string
	Handle          string // without the leading "@"
	Body            string // LF line endings
	AvatarImage     string // http(s) URL, data URI, or empty
	BackgroundImage string // http(s) URL, data URI, or empty
	Format          BodyFormat
}

// NewRequest normalizes and validates raw fields.
// Returns *ValidationError listing every missing and invalid field.
func NewRequest(f Fields) (*Request, error) {
	body := f.Tweet
	if strings.TrimSpace(body) == "" {
		body = f.Body
	}

	req := &Request{
		DisplayName:     strings.TrimSpace(f.Name),
		Handle:          normalizeHandle(f.Handle),
		Body:            strings.TrimSpace(pipeline.NormalizeLineEndings(body)),
		AvatarImage:     strings.TrimSpace(f.ProfileImage),
		BackgroundImage: strings.TrimSpace(f.Background),
		Format:          BodyFormat(strings.ToLower(strings.TrimSpace(f.Format))),
	}
	if req.Format == "" {
		req.Format = FormatText
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// normalizeHandle trims whitespace and one leading "@".
func normalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.TrimSpace(handle)
}

// Validate checks required fields, lengths, image references and format.
// Returns nil if r is nil.
func (r *Request) Validate() error {
	if r == nil {
		return nil
	}

	verr := &ValidationError{}

	required := []struct {
		field string
		value string
		max   int
	}{
		{FieldName, r.DisplayName, MaxNameLength},
		{FieldHandle, r.Handle, MaxHandleLength},
		{FieldBody, r.Body, MaxBodyLength},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.Missing = append(verr.Missing, f.field)
			continue
		}
		if n := utf8.RuneCountInString(f.value); n > f.max {
			verr.add(f.field, fmt.Errorf("%w: %d characters, max %d", ErrFieldTooLong, n, f.max))
		}
	}

	for _, img := range []struct{ field, ref string }{
		{FieldProfileImage, r.AvatarImage},
		{FieldBackground, r.BackgroundImage},
	} {
		if img.ref != "" && !imagefetch.IsSupportedRef(img.ref) {
			verr.add(img.field, fmt.Errorf("%w: must be an http(s) URL or a data:image URI", ErrInvalidImageRef))
		}
	}

	switch r.Format {
	case FormatText, FormatMarkdown, "":
	default:
		verr.add(FieldFormat, fmt.Errorf("%w: %q (must be text or markdown)", ErrInvalidFormat, r.Format))
	}

	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}

// FieldError describes one invalid field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// ValidationError reports every missing and invalid field of a request.
// Missing fields are listed in the order name, handle, body.
//
// errors.Is(err, ErrMissingField) and errors.Is(err, ErrInvalidField) report
// which kind is present; the per-field causes (ErrFieldTooLong,
// ErrInvalidImageRef, ErrInvalidFormat) are matched through Unwrap.
type ValidationError struct {
	Missing []string
	Invalid []FieldError
}

func (e *ValidationError) add(field string, err error) {
	e.Invalid = append(e.Invalid, FieldError{Field: field, Err: err})
}

// InvalidFields returns the names of the invalid fields, in report order.
func (e *ValidationError) InvalidFields() []string {
	names := make([]string, 0, len(e.Invalid))
	for _, fe := range e.Invalid {
		names = append(names, fe.Field)
	}
	return names
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		details := make([]string, 0, len(e.Invalid))
		for _, fe := range e.Invalid {
			details = append(details, fe.Error())
		}
		parts = append(parts, "invalid fields: "+strings.Join(details, "; "))
	}
	return strings.Join(parts, "; ")
}

// Is reports ErrMissingField and ErrInvalidField.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return len(e.Missing) > 0
	case ErrInvalidField:
		return len(e.Invalid) > 0
	}
	return false
}

// Unwrap exposes the per-field causes.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Invalid))
	for _, fe := range e.Invalid {
		errs = append(errs, fe.Err)
	}
	return errs
}
