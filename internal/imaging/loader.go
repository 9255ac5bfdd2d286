package imaging

import (
	"bytes"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Supported MIME types for uploaded images.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

var (
	// ErrUnsupportedMediaType is returned when the declared content type is
	// not JPEG or PNG. The bytes are never decoded in that case.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrDecodeFailure is returned when the bytes cannot be decoded as an image.
	ErrDecodeFailure = errors.New("could not decode image")
)

// Decode decodes raw encoded image bytes with a declared MIME type.
//
// Parameters:
//   - data: The encoded image bytes.
//   - mimeType: The declared content type. Only "image/jpeg" and "image/png"
//     are accepted; parameters such as "; charset=binary" are ignored.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: ErrUnsupportedMediaType for any other content type (checked before
//     decoding), or ErrDecodeFailure if the bytes are empty or corrupt.
//
// The declared type is not cross-checked against the sniffed format, so a PNG
// uploaded as image/jpeg still decodes.
func Decode(data []byte, mimeType string) (image.Image, error) {
	mt := normalizeMIME(mimeType)
	if mt != MIMEJPEG && mt != MIMEPNG {
		return nil, errors.Mark(
			errors.Newf("content type %q: upload a JPG or PNG image", mimeType),
			ErrUnsupportedMediaType,
		)
	}
	if len(data) == 0 {
		return nil, errors.Mark(errors.New("empty image data"), ErrDecodeFailure)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode image"), ErrDecodeFailure)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, errors.Mark(errors.New("image has no pixels"), ErrDecodeFailure)
	}
	return img, nil
}

// MIMETypeForPath returns the MIME type implied by a file extension.
//
// ".jpg" and ".jpeg" map to image/jpeg, ".png" to image/png. Any other
// extension yields ErrUnsupportedMediaType.
func MIMETypeForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return MIMEJPEG, nil
	case ".png":
		return MIMEPNG, nil
	}
	return "", errors.Mark(
		errors.Newf("file %s: only .jpg, .jpeg and .png are supported", filepath.Base(path)),
		ErrUnsupportedMediaType,
	)
}

func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return MIMEJPEG
	}
	return mt
}

// DefaultCacheCapacity is the number of decoded images NewImageCache keeps.
const DefaultCacheCapacity = 64

type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
}

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads and decodes.
//
// Entries are keyed by file path and remember the file's modification time
// and size. Load stats the file on every call and decodes it again when
// either has changed, so a file rewritten in place is never served stale.
// When the cache holds more than its capacity, the least recently used entry
// is dropped.
//
// Cached images are never modified by this package, so sharing them between
// concurrent pipeline runs is safe.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	images   *orderedmap.OrderedMap[string, cacheEntry]
}

// NewImageCache creates an empty cache holding up to DefaultCacheCapacity
// images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultCacheCapacity)
}

// NewImageCacheSize creates an empty cache holding up to capacity images.
// A capacity below 1 is treated as 1.
func NewImageCacheSize(capacity int) *ImageCache {
	return &ImageCache{
		capacity: max(capacity, 1),
		images:   orderedmap.New[string, cacheEntry](),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The MIME type is derived from the file extension with MIMETypeForPath, so
// the same JPEG/PNG restriction as Decode applies. Failed loads are not cached.
func (c *ImageCache) Load(path string) (image.Image, error) {
	mimeType, err := MIMETypeForPath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}

	c.mu.Lock()
	if e, ok := c.images.Get(path); ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		_ = c.images.MoveToBack(path)
		c.mu.Unlock()
		return e.img, nil
	}
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}

	img, err := Decode(data, mimeType)
	if err != nil {
		c.Evict(path)
		return nil, errors.Wrapf(err, "load %s", path)
	}

	c.mu.Lock()
	c.images.Delete(path)
	c.images.Set(path, cacheEntry{img: img, modTime: info.ModTime(), size: info.Size()})
	for c.images.Len() > c.capacity {
		c.images.Delete(c.images.Oldest().Key)
	}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Len()
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = orderedmap.New[string, cacheEntry]()
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	c.images.Delete(path)
	c.mu.Unlock()
}
