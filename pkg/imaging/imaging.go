// Package imaging coerces user-supplied raster images into the one canonical
// encoding the document merge step accepts: a PNG payload wrapped in a
// base64 data URI. Normalizing at ingestion time keeps format detection out
// of every downstream component.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrRead reports a failure while reading the source bytes.
	ErrRead = errors.New("imaging: read failed")
	// ErrDecode reports a corrupt or unsupported image payload.
	ErrDecode = errors.New("imaging: image decode failed")
)

// PNGPrefix is the canonical data-URI prefix every normalized image carries.
const PNGPrefix = "data:image/png;base64,"

// DefaultImageName is used when an upload carries no file name.
const DefaultImageName = "imagem.png"

// IsCanonicalPNG reports whether the encoded string already carries the
// canonical PNG data-URI prefix. The "data:" scheme marker is optional and
// matching is case-insensitive, mirroring what stored legacy values look
// like.
func IsCanonicalPNG(encoded string) bool {
	lower := strings.ToLower(encoded)
	lower = strings.TrimPrefix(lower, "data:")
	return strings.HasPrefix(lower, "image/png;base64,")
}

// EncodeDataURI wraps raw bytes into a self-describing data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its media type and raw bytes.
func DecodeDataURI(encoded string) (string, []byte, error) {
	payload := strings.TrimPrefix(encoded, "data:")
	mediaType, b64, ok := strings.Cut(payload, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a base64 data URI", ErrDecode)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload: %v", ErrDecode, err)
	}
	return mediaType, data, nil
}

// ReadFile reads a file from disk into a data-URI string, sniffing the media
// type from the content.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return EncodeDataURI(sniffMediaType(data), data), nil
}

// ToCanonicalPNG converts an encoded image into the canonical PNG data-URI
// encoding. Input that already carries the canonical prefix is returned
// unchanged, so the conversion is idempotent and never recompresses a PNG.
func ToCanonicalPNG(encoded string) (string, error) {
	if IsCanonicalPNG(encoded) {
		return encoded, nil
	}

	_, data, err := DecodeDataURI(encoded)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("%w: re-encode: %v", ErrDecode, err)
	}
	return PNGPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DeriveOutputName strips the last extension from the original file name and
// appends ".png". An empty name falls back to DefaultImageName.
func DeriveOutputName(originalName string) string {
	name := strings.TrimSpace(originalName)
	if name == "" {
		return DefaultImageName
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	return name + ".png"
}

// Upload is the normalized result of an accepted image upload.
type Upload struct {
	ImageData string
	ImageName string
}

// NormalizeUpload reads an uploaded file and produces its canonical PNG
// representation. Uploads whose declared media type is not an image category
// are silently rejected with a nil result; callers treat nil as "ignore".
func NormalizeUpload(name, mediaType string, r io.Reader) (*Upload, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/") {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	canonical, err := ToCanonicalPNG(EncodeDataURI(sniffMediaType(data), data))
	if err != nil {
		return nil, err
	}
	return &Upload{ImageData: canonical, ImageName: DeriveOutputName(name)}, nil
}

func sniffMediaType(data []byte) string {
	return strings.TrimSpace(strings.Split(http.DetectContentType(data), ";")[0])
}
