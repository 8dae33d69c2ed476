package imagefetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const svgSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 20"><rect width="10" height="20" fill="#1f2937"/></svg>`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 0x15, G: 0x20, B: 0x2b, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ---------------------------------------------------------------------------
// TestIsSupportedRef - Accepted reference forms
// ---------------------------------------------------------------------------

func TestIsSupportedRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com/a.png", true},
		{"HTTPS://EXAMPLE.COM/A.PNG", true},
		{"data:image/png;base64,AAAA", true},
		{"DATA:image/svg+xml,<svg/>", true},
		{"data:text/html,<script>", false},
		{"javascript:alert(1)", false},
		{"file:///etc/passwd", false},
		{"/local/avatar.png", false},
		{"avatar.png", false},
		{"https:///nohost.png", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()

			if got := IsSupportedRef(tt.ref); got != tt.want {
				t.Errorf("IsSupportedRef(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFetcher_Load - Data URIs and remote images
// ---------------------------------------------------------------------------

func TestFetcher_Load_DataURI(t *testing.T) {
	t.Parallel()

	f := New()

	tests := []struct {
		name  string
		ref   string
		wantW int
		wantH int
		errIs error
	}{
		{"png base64", dataURI("image/png", pngBytes(t, 4, 3)), 4, 3, nil},
		{"svg percent encoded", "data:image/svg+xml," + strings.ReplaceAll(svgSquare, "#", "%23"), 750, 1500, nil},
		{"svg base64", dataURI("image/svg+xml", []byte(svgSquare)), 750, 1500, nil},
		{"not an image", dataURI("image/png", []byte("hello world, plain text")), 0, 0, ErrNotImage},
		{"corrupt base64", "data:image/png;base64,@@@@", 0, 0, ErrDecode},
		{"no payload", "data:image/png;base64", 0, 0, ErrDecode},
		{"unsupported scheme", "ftp://example.com/a.png", 0, 0, ErrUnsupportedRef},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := f.Load(context.Background(), tt.ref)
			if tt.errIs != nil {
				if !errors.Is(err, tt.errIs) {
					t.Errorf("Load() error = %v, want %v", err, tt.errIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Load() bounds = %v, want %dx%d", b, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFetcher_Load_DataURITooLarge(t *testing.T) {
	t.Parallel()

	f := New(WithMaxBytes(16))
	_, err := f.Load(context.Background(), dataURI("image/png", pngBytes(t, 8, 8)))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() error = %v, want ErrTooLarge", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h pixels.
// Enough for DecodeConfig; a full decode fails.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 6, 0, 0, 0) // 8-bit RGBA

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, ihdr...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

func TestDecode_PixelLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"small png", pngBytes(t, 8, 8), nil},
		{"declared 12000x12000", pngHeader(12000, 12000), ErrTooLarge},
		{"declared just over limit", pngHeader(MaxPixels/1000+1, 1000), ErrTooLarge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := Decode(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if img.Bounds().Dx() != 8 {
					t.Errorf("width = %d, want 8", img.Bounds().Dx())
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetcher_Load_DataURIPixelLimit(t *testing.T) {
	t.Parallel()

	f := New()
	_, err := f.Load(context.Background(), dataURI("image/png", pngHeader(12000, 12000)))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() error = %v, want ErrTooLarge", err)
	}
}

func TestFetcher_Load_Remote(t *testing.T) {
	t.Parallel()

	img := pngBytes(t, 6, 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/avatar.png":
			if r.Header.Get("User-Agent") == "" {
				t.Error("request without User-Agent")
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		case "/big.png":
			_, _ = w.Write(bytes.Repeat([]byte{0}, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := New(WithClient(srv.Client()))

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		got, err := f.Load(context.Background(), srv.URL+"/avatar.png")
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if got.Bounds().Dx() != 6 {
			t.Errorf("Load() width = %d, want 6", got.Bounds().Dx())
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := f.Load(context.Background(), srv.URL+"/missing.png")
		if !errors.Is(err, ErrFetch) {
			t.Errorf("Load() error = %v, want ErrFetch", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		small := New(WithClient(srv.Client()), WithMaxBytes(32))
		_, err := small.Load(context.Background(), srv.URL+"/big.png")
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("Load() error = %v, want ErrTooLarge", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Load(ctx, srv.URL+"/avatar.png")
		if !errors.Is(err, ErrFetch) {
			t.Errorf("Load() error = %v, want ErrFetch", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestFileToDataURI - Local files for the CLI
// ---------------------------------------------------------------------------

func TestFileToDataURI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pngPath := filepath.Join(dir, "avatar.png")
	if err := os.WriteFile(pngPath, pngBytes(t, 2, 2), 0o600); err != nil {
		t.Fatalf("writing png: %v", err)
	}
	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("writing txt: %v", err)
	}

	t.Run("png", func(t *testing.T) {
		t.Parallel()

		got, err := FileToDataURI(pngPath, 0)
		if err != nil {
			t.Fatalf("FileToDataURI() unexpected error: %v", err)
		}
		if !strings.HasPrefix(got, "data:image/png;base64,") {
			t.Errorf("FileToDataURI() = %q, want png data URI", got[:30])
		}
		if !IsSupportedRef(got) {
			t.Error("FileToDataURI() result should be a supported reference")
		}
	})

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()

		_, err := FileToDataURI(txtPath, 0)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("FileToDataURI() error = %v, want ErrNotImage", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, err := FileToDataURI(pngPath, 4)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("FileToDataURI() error = %v, want ErrTooLarge", err)
		}
	})
}

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want string
	}{
		{"data:image/png;base64,AAAABBBB", "data:image/png;base64,…"},
		{"https://example.com/a.png?token=secret", "https://example.com/a.png?…"},
		{"https://example.com/a.png", "https://example.com/a.png"},
	}

	for _, tt := range tests {
		if got := Redact(tt.ref); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
