package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbedded_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		asset    Asset
		contains []string
		wantErr  error
	}{
		{
			name:     "card style",
			asset:    CardStyle,
			contains: []string{"--tc-card-width"},
		},
		{
			name:     "card template",
			asset:    CardTemplate,
			contains: []string{"{{.Style}}", "{{.Avatar}}", "{{.Name}}", "@{{.Handle}}", "{{.Body}}", "{{.BodyHTML}}", "•••"},
		},
		{
			name:    "unknown asset",
			asset:   Asset{dir: "styles", file: "night.css"},
			wantErr: ErrUnknownAsset,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Embedded{}.Load(tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load(%s) error = %v, want %v", tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%s) unexpected error: %v", tt.asset, err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Load(%s) should contain %q", tt.asset, want)
				}
			}
		})
	}
}
