package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// createTestImageFile writes a solid color PNG into a temp dir and returns its path.
func createTestImageFile(t *testing.T, name string, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, encodePNG(t, createInMemoryImage(width, height, c)), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestDecode_PNG(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(40, 30, color.RGBA{10, 20, 30, 255}))

	img, err := Decode(data, "image/png")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("unexpected dimensions: got %dx%d, want 40x30", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createInMemoryImage(16, 16, color.RGBA{200, 100, 50, 255}), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	for _, mt := range []string{"image/jpeg", "IMAGE/JPEG", "image/jpg", "image/jpeg; charset=binary"} {
		t.Run(mt, func(t *testing.T) {
			if _, err := Decode(buf.Bytes(), mt); err != nil {
				t.Errorf("Decode(%q) failed: %v", mt, err)
			}
		})
	}
}

func TestDecode_UnsupportedMediaType(t *testing.T) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, createInMemoryImage(8, 8, color.White), nil); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}

	tests := []string{"image/gif", "application/octet-stream", "", "text/plain"}
	for _, mt := range tests {
		t.Run(mt, func(t *testing.T) {
			_, err := Decode(buf.Bytes(), mt)
			if !errors.Is(err, ErrUnsupportedMediaType) {
				t.Errorf("Decode(%q): got %v, want ErrUnsupportedMediaType", mt, err)
			}
			if errors.Is(err, ErrDecodeFailure) {
				t.Errorf("Decode(%q): unsupported type must not be reported as decode failure", mt)
			}
		})
	}
}

func TestDecode_Failure(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not an image")},
		{"truncated png", encodePNG(t, createInMemoryImage(10, 10, color.Black))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, MIMEPNG)
			if !errors.Is(err, ErrDecodeFailure) {
				t.Errorf("got %v, want ErrDecodeFailure", err)
			}
		})
	}
}

func TestMIMETypeForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/a/b/photo.jpg", MIMEJPEG, false},
		{"photo.JPEG", MIMEJPEG, false},
		{"fridge.png", MIMEPNG, false},
		{"anim.gif", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := MIMETypeForPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedMediaType) {
					t.Errorf("got %v, want ErrUnsupportedMediaType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
	if cache.capacity != DefaultCacheCapacity {
		t.Errorf("capacity: got %d, want %d", cache.capacity, DefaultCacheCapacity)
	}
	if NewImageCacheSize(0).capacity != 1 {
		t.Error("capacity below 1 should be raised to 1")
	}
}

func TestImageCache_ReloadsRewrittenFile(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, "pantry.png", 20, 20, color.White)

	first, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.WriteFile(imgPath, encodePNG(t, createInMemoryImage(30, 12, color.Black)), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(imgPath, later, later); err != nil {
		t.Fatal(err)
	}

	second, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load after rewrite failed: %v", err)
	}
	if first == second {
		t.Fatal("rewritten file was served from the stale cache entry")
	}
	if b := second.Bounds(); b.Dx() != 30 || b.Dy() != 12 {
		t.Errorf("reloaded dimensions: got %dx%d, want 30x12", b.Dx(), b.Dy())
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_RewriteToCorruptEvicts(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, "shelf.png", 10, 10, color.White)
	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.WriteFile(imgPath, []byte("truncated upload"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(imgPath, later, later); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load(imgPath); !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("got %v, want ErrDecodeFailure", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len: got %d, want 0", cache.Len())
	}
}

func TestImageCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewImageCacheSize(2)
	a := createTestImageFile(t, "a.png", 4, 4, color.White)
	b := createTestImageFile(t, "b.png", 4, 4, color.Black)
	c := createTestImageFile(t, "c.png", 4, 4, color.White)

	imgA, err := cache.Load(a)
	if err != nil {
		t.Fatal(err)
	}
	imgB, err := cache.Load(b)
	if err != nil {
		t.Fatal(err)
	}
	// Touch a so b becomes the oldest entry.
	if _, err := cache.Load(a); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(c); err != nil {
		t.Fatal(err)
	}

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	again, _ := cache.Load(a)
	if again != imgA {
		t.Error("recently used entry a was evicted")
	}
	reloaded, _ := cache.Load(b)
	if reloaded == imgB {
		t.Error("least recently used entry b was not evicted")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, "red.png", 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("got %v, want ErrDecodeFailure", err)
	}
	if cache.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestImageCache_Load_UnsupportedExtension(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "image.gif")
	if err := os.WriteFile(path, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load(path); !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("got %v, want ErrUnsupportedMediaType", err)
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	p1 := createTestImageFile(t, "a.png", 10, 10, color.White)
	p2 := createTestImageFile(t, "b.png", 10, 10, color.Black)

	for _, p := range []string{p1, p2} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(p1)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}
	cache.Evict("/never/loaded.png")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImageFile(t, "shared.png", 50, 50, color.RGBA{0, 255, 0, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	res, err := EncodePNG(createInMemoryImage(12, 7, color.White))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if res.Width != 12 || res.Height != 7 {
		t.Errorf("dimensions: got %dx%d, want 12x7", res.Width, res.Height)
	}
	if res.MimeType != MIMEPNG {
		t.Errorf("MimeType: got %s, want %s", res.MimeType, MIMEPNG)
	}
	if res.ImageBase64 == "" {
		t.Error("ImageBase64 is empty")
	}
}
