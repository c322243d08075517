package imaging_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/pkg/imaging"
)

func encodeJPEG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return imaging.EncodeDataURI("image/jpeg", buf.Bytes())
}

func TestToCanonicalPNGConvertsJPEG(t *testing.T) {
	encoded := encodeJPEG(t, 4, 3)

	got, err := imaging.ToCanonicalPNG(encoded)
	if err != nil {
		t.Fatalf("ToCanonicalPNG: %v", err)
	}
	if !strings.HasPrefix(got, imaging.PNGPrefix) {
		t.Fatalf("output does not carry canonical prefix: %.40s", got)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, imaging.PNGPrefix))
	if err != nil {
		t.Fatalf("decode output base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode output png: %v", err)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 3 {
		t.Errorf("natural dimensions not preserved: %v", decoded.Bounds())
	}
}

func TestToCanonicalPNGIsIdempotent(t *testing.T) {
	once, err := imaging.ToCanonicalPNG(encodeJPEG(t, 2, 2))
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := imaging.ToCanonicalPNG(once)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if once != twice {
		t.Error("second pass changed an already canonical payload")
	}
}

func TestToCanonicalPNGRejectsCorruptPayload(t *testing.T) {
	_, err := imaging.ToCanonicalPNG("data:image/jpeg;base64,AAAA")
	if !errors.Is(err, imaging.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	_, err = imaging.ToCanonicalPNG("plain text, not a data uri")
	if !errors.Is(err, imaging.ErrDecode) {
		t.Fatalf("expected ErrDecode for non data URI, got %v", err)
	}
}

func TestDeriveOutputName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"screenshot.jpeg", "screenshot.png"},
		{"archive.tar.gz", "archive.tar.png"},
		{"noextension", "noextension.png"},
		{".hidden", ".hidden.png"},
		{"", "imagem.png"},
		{"   ", "imagem.png"},
	}
	for _, tc := range cases {
		if got := imaging.DeriveOutputName(tc.in); got != tc.want {
			t.Errorf("DeriveOutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUploadRejectsNonImages(t *testing.T) {
	upload, err := imaging.NormalizeUpload("notes.txt", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upload != nil {
		t.Fatalf("non-image upload should be ignored, got %+v", upload)
	}
}

func TestNormalizeUploadProducesCanonicalResult(t *testing.T) {
	encoded := encodeJPEG(t, 2, 2)
	_, raw, err := imaging.DecodeDataURI(encoded)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	upload, err := imaging.NormalizeUpload("photo.jpg", "image/jpeg", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NormalizeUpload: %v", err)
	}
	if upload == nil {
		t.Fatal("expected an upload result")
	}
	if !strings.HasPrefix(upload.ImageData, imaging.PNGPrefix) {
		t.Errorf("image data not canonical: %.40s", upload.ImageData)
	}
	if upload.ImageName != "photo.png" {
		t.Errorf("image name = %q, want photo.png", upload.ImageName)
	}
}

func TestIsCanonicalPNGToleratesLegacyShapes(t *testing.T) {
	for _, encoded := range []string{
		"data:image/png;base64,AAAA",
		"image/png;base64,AAAA",
		"DATA:IMAGE/PNG;BASE64,AAAA",
	} {
		if !imaging.IsCanonicalPNG(encoded) {
			t.Errorf("IsCanonicalPNG(%q) = false, want true", encoded)
		}
	}
	if imaging.IsCanonicalPNG("data:image/jpeg;base64,AAAA") {
		t.Error("jpeg data URI must not pass the canonical check")
	}
}
