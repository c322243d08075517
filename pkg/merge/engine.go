// Package merge substitutes a normalized payload into a DOCX template. Text
// tags ({name}), list sections ({#name}...{/name}) and image tags ({%name})
// are resolved against the flat payload; images must already carry the
// canonical PNG encoding when they reach this boundary.
package merge

import (
	"errors"
	"math"
)

var (
	// ErrRender reports a template that could not be merged.
	ErrRender = errors.New("merge: render failed")
	// ErrInvalidImageFormat reports image data that is not canonically
	// PNG-encoded reaching an image tag.
	ErrInvalidImageFormat = errors.New("merge: image data is not canonical PNG")
)

// DefaultContainerWidth is the assumed content width in pixels when the
// caller does not supply one.
const DefaultContainerWidth = 700

// RenderOptions tunes one merge call.
type RenderOptions struct {
	// EmbedImages engages the image-embedding module. It must stay off when
	// the payload carries no image data: the module strictly validates every
	// image-bearing tag it sees.
	EmbedImages bool

	// ContainerWidth is the available content width in pixels used by the
	// image sizing policy. Zero selects DefaultContainerWidth.
	ContainerWidth int
}

// Engine merges a payload into template bytes and yields the final document.
type Engine interface {
	Render(template []byte, data map[string]any, opts RenderOptions) ([]byte, error)
}

// imageSize applies the fixed sizing policy for embedded images:
// width = max(220, round(0.8 × container width)), height = round(0.62 × width).
// Sizing is policy-driven, not content-derived.
func imageSize(containerWidth int) (width, height int) {
	if containerWidth <= 0 {
		containerWidth = DefaultContainerWidth
	}
	width = int(math.Round(0.8 * float64(containerWidth)))
	if width < 220 {
		width = 220
	}
	height = int(math.Round(0.62 * float64(width)))
	return width, height
}

// emuPerPixel converts CSS pixels to English Metric Units at 96 dpi.
const emuPerPixel = 9525
