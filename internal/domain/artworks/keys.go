package artworks

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const keyPrefix = "artwork"

const (
	ExtJPEG = "jpg"
	ExtPNG  = "png"
)

var ErrForeignURL = errors.New("url is not under the storage public base")

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidID reports whether id is a canonical UUID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// OriginalKey is artwork/{familyId}/{imageId}.{ext}
func OriginalKey(familyID, imageID, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", keyPrefix, familyID, imageID, ext)
}

// ThumbnailKey is artwork/{familyId}/{imageId}_thumb.jpg
func ThumbnailKey(familyID, imageID string) string {
	return fmt.Sprintf("%s/%s/%s_thumb.%s", keyPrefix, familyID, imageID, ExtJPEG)
}

// PublicURL joins the public base and key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// KeyFromURL recovers the object key from a public URL: the path without its
// leading slash and without the path prefix of base, if base has one.
func KeyFromURL(base, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	key := strings.TrimPrefix(u.Path, "/")

	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		if b.Host != "" && u.Host != "" && !strings.EqualFold(b.Host, u.Host) {
			return "", ErrForeignURL
		}
		if prefix := strings.Trim(b.Path, "/"); prefix != "" {
			if !strings.HasPrefix(key, prefix+"/") {
				return "", ErrForeignURL
			}
			key = strings.TrimPrefix(key, prefix+"/")
		}
	}

	if key == "" {
		return "", fmt.Errorf("empty key in %q", raw)
	}
	return key, nil
}
