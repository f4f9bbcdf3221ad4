package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the webp decoder

	"kidcanvas/internal/domain/artworks"
)

const (
	ThumbnailSize    = 400
	OriginalQuality  = 90
	ThumbnailQuality = 80

	// MaxPixels bounds decoded images to keep memory predictable.
	MaxPixels = 50_000_000
)

var ErrTooLarge = errors.New("image dimensions exceed limit")

// Derivatives are the stored renditions of one upload.
type Derivatives struct {
	Original            []byte
	OriginalExt         string
	OriginalContentType string
	Thumbnail           []byte
	Width               int
	Height              int
}

type Processor struct{}

func New() *Processor {
	return &Processor{}
}

// Derive applies EXIF orientation and produces the re-encoded original (PNG
// stays PNG, everything else becomes JPEG) plus a square JPEG thumbnail.
func (p *Processor) Derive(ctx context.Context, data []byte) (*Derivatives, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Processor - Derive - image.DecodeConfig: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("Processor - Derive: %w (%dx%d)", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("Processor - Derive - imaging.Decode: %w", err)
	}

	out := &Derivatives{
		OriginalExt:         artworks.ExtJPEG,
		OriginalContentType: "image/jpeg",
		Width:               img.Bounds().Dx(),
		Height:              img.Bounds().Dy(),
	}

	format := imaging.JPEG
	if http.DetectContentType(data) == "image/png" {
		format = imaging.PNG
		out.OriginalExt = artworks.ExtPNG
		out.OriginalContentType = "image/png"
	}

	if out.Original, err = encode(img, format, OriginalQuality); err != nil {
		return nil, fmt.Errorf("Processor - Derive - encode original: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)
	if out.Thumbnail, err = encode(thumb, imaging.JPEG, ThumbnailQuality); err != nil {
		return nil, fmt.Errorf("Processor - Derive - encode thumbnail: %w", err)
	}

	return out, nil
}

func encode(img image.Image, format imaging.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var opts []imaging.EncodeOption
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(quality))
	}

	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
