// Package assets batch-processes images (resize/crop) before they are
// pushed to the site's asset library.
package assets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Resize modes.
const (
	ModeFit     = "fit"     // shrink to fit within bounds, aspect kept
	ModeFill    = "fill"    // crop to exactly the bounds, center anchor
	ModeStretch = "stretch" // force the bounds, aspect ignored
)

type Options struct {
	Width   int
	Height  int
	Mode    string
	Format  string // "jpeg" or "png"
	Quality int    // jpeg only, 1-100, default 85
}

func (o *Options) normalize() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	switch o.Mode {
	case "", ModeFit:
		o.Mode = ModeFit
	case ModeFill, ModeStretch:
	default:
		return fmt.Errorf("unknown mode %q (want fit, fill or stretch)", o.Mode)
	}
	switch strings.ToLower(o.Format) {
	case "", "jpeg", "jpg":
		o.Format = "jpeg"
	case "png":
		o.Format = "png"
	default:
		return fmt.Errorf("unsupported format %q (want jpeg or png)", o.Format)
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 85
	}
	return nil
}

// Process decodes one image, applies the resize/crop, and re-encodes it.
func Process(data []byte, opts Options) ([]byte, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var dst = src
	switch opts.Mode {
	case ModeFit:
		dst = imaging.Fit(src, opts.Width, opts.Height, imaging.Lanczos)
	case ModeFill:
		dst = imaging.Fill(src, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	case ModeStretch:
		dst = imaging.Resize(src, opts.Width, opts.Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case "png":
		err = imaging.Encode(&buf, dst, imaging.PNG)
	default:
		err = imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// OutputName rewrites the file extension to match the output format.
func OutputName(fileName, format string) string {
	base := fileName
	if i := strings.LastIndex(fileName, "."); i > 0 {
		base = fileName[:i]
	}
	if format == "png" {
		return base + ".png"
	}
	return base + ".jpg"
}
