package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNeutralize - Inert fragments
// ---------------------------------------------------------------------------

func TestNeutralize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "plain text unchanged",
			html:         `<p>hello</p>`,
			wantContains: []string{`<p>hello</p>`},
		},
		{
			name:         "image removed",
			html:         `<p>a<img src="https://example.com/x.png">b</p>`,
			wantContains: []string{`<p>ab</p>`},
			wantExcludes: []string{"<img"},
		},
		{
			name:         "script removed with content",
			html:         `<p>a</p><script>alert(1)</script>`,
			wantExcludes: []string{"script", "alert"},
		},
		{
			name:         "iframe removed",
			html:         `<iframe src="https://example.com"></iframe><p>x</p>`,
			wantContains: []string{"<p>x</p>"},
			wantExcludes: []string{"iframe"},
		},
		{
			name:         "anchor becomes span",
			html:         `<a href="javascript:alert(1)" title="t">go</a>`,
			wantContains: []string{"<span>go</span>"},
			wantExcludes: []string{"href", "javascript", "title"},
		},
		{
			name:         "event handlers dropped",
			html:         `<p onclick="x()" style="color:red">t</p>`,
			wantContains: []string{`<p style="color:red">t</p>`},
			wantExcludes: []string{"onclick"},
		},
		{
			name:         "style with url dropped",
			html:         `<p style="background:url(https://example.com/t.png)">t</p>`,
			wantContains: []string{"<p>t</p>"},
			wantExcludes: []string{"url("},
		},
		{
			name:         "comment dropped",
			html:         `<!-- raw HTML omitted --><p>t</p>`,
			wantExcludes: []string{"<!--"},
		},
		{
			name:         "checked checkbox becomes text",
			html:         `<li><input checked="" disabled="" type="checkbox"> done</li>`,
			wantContains: []string{"[x]  done"},
			wantExcludes: []string{"<input"},
		},
		{
			name:         "nested elements walked",
			html:         `<blockquote><p><a href="x"><img src="y">in</a></p></blockquote>`,
			wantContains: []string{"<blockquote><p><span>in</span></p></blockquote>"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Neutralize(tt.html)
			if err != nil {
				t.Fatalf("Neutralize() unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Neutralize() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Neutralize() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}
