// Package images resolves the intrinsic size of image elements.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	stdnet "regionflow/std/net"
)

// ImageFetcher retrieves the raw bytes of a non-data image URI.
type ImageFetcher func(uri string) ([]byte, error)

// Cache caches decoded images by URI.
type Cache struct {
	fetch ImageFetcher

	mu    sync.RWMutex
	cache map[string]image.Image
}

// NewCache creates a cache. A nil fetcher reads URIs as file paths.
func NewCache(fetch ImageFetcher) *Cache {
	if fetch == nil {
		fetch = os.ReadFile
	}
	return &Cache{fetch: fetch, cache: make(map[string]image.Image)}
}

// IsDataURI reports whether uri is a data: URI.
func IsDataURI(uri string) bool {
	return stdnet.IsDataURI(uri)
}

// LoadImageFromDataURI decodes an image embedded in a data URI.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	data, _, err := stdnet.ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// LoadImage loads an image from a data URI or through the fetcher
func (c *Cache) LoadImage(uri string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.cache[uri]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	var img image.Image
	var err error
	if IsDataURI(uri) {
		img, err = LoadImageFromDataURI(uri)
	} else {
		var data []byte
		data, err = c.fetch(uri)
		if err == nil {
			img, err = decode(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %q: %w", shorten(uri), err)
	}

	c.mu.Lock()
	c.cache[uri] = img
	c.mu.Unlock()
	return img, nil
}

// GetImageDimensions returns the width and height of an image
func (c *Cache) GetImageDimensions(uri string) (width, height int, err error) {
	img, err := c.LoadImage(uri)
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func shorten(uri string) string {
	if len(uri) > 64 {
		return uri[:61] + "..."
	}
	return uri
}
