package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestReencodeDownscalesLongEdge(t *testing.T) {
	src := pngBytes(t, 2048, 1024)

	enc, err := Reencode(src, 0.7, FormatJPEG)
	if err != nil {
		t.Fatalf("Reencode: %v", err)
	}

	w, h := decodeSize(t, enc.Bytes)
	if w != 1024 || h != 512 {
		t.Errorf("dimensions: got %dx%d, want 1024x512", w, h)
	}
	if enc.Size != len(enc.Bytes) {
		t.Errorf("Size %d does not match len(Bytes) %d", enc.Size, len(enc.Bytes))
	}
	if enc.MIMEType() != "image/jpeg" {
		t.Errorf("MIME: got %s, want image/jpeg", enc.MIMEType())
	}
}

func TestReencodeKeepsSmallImages(t *testing.T) {
	src := jpegBytes(t, 300, 200)

	enc, err := Reencode(src, 0.9, FormatPNG)
	if err != nil {
		t.Fatalf("Reencode: %v", err)
	}

	w, h := decodeSize(t, enc.Bytes)
	if w != 300 || h != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", w, h)
	}
	if enc.MIMEType() != "image/png" {
		t.Errorf("MIME: got %s, want image/png", enc.MIMEType())
	}
}

func TestReencodePortraitAspect(t *testing.T) {
	src := pngBytes(t, 1000, 4000)

	enc, err := Reencode(src, 0.7, FormatJPEG)
	if err != nil {
		t.Fatalf("Reencode: %v", err)
	}
	w, h := decodeSize(t, enc.Bytes)
	if h != 1024 || w != 256 {
		t.Errorf("dimensions: got %dx%d, want 256x1024", w, h)
	}
}

func TestReencodeRejectsGarbage(t *testing.T) {
	if _, err := Reencode([]byte("not an image"), 0.7, FormatJPEG); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestReencodeRejectsUnknownFormat(t *testing.T) {
	if _, err := Reencode(pngBytes(t, 10, 10), 0.7, Format("webp")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestJpegQualityMapping(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.0, 1},
		{0.7, 70},
		{0.95, 95},
		{1.0, 100},
		{1.5, 100},
		{-0.2, 1},
	}
	for _, tc := range tests {
		if got := jpegQuality(tc.in); got != tc.want {
			t.Errorf("jpegQuality(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{800, 600, 1024, 800, 600},
		{1024, 1024, 1024, 1024, 1024},
		{2048, 1024, 1024, 1024, 512},
		{1024, 2048, 1024, 512, 1024},
		{3000, 1000, 1024, 1024, 341},
	}
	for _, tc := range tests {
		gotW, gotH := fitDimensions(tc.w, tc.h, tc.max)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("fitDimensions(%d, %d, %d) = %d, %d; want %d, %d",
				tc.w, tc.h, tc.max, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestDetectMIME(t *testing.T) {
	if got := DetectMIME(pngBytes(t, 4, 4)); got != "image/png" {
		t.Errorf("png: got %s", got)
	}
	if got := DetectMIME(jpegBytes(t, 4, 4)); got != "image/jpeg" {
		t.Errorf("jpeg: got %s", got)
	}
	if got := DetectMIME([]byte("plain text content")); got != "image/png" {
		t.Errorf("fallback: got %s, want image/png", got)
	}
}

func TestExtensionForMIME(t *testing.T) {
	if got := ExtensionForMIME("image/png"); got != "png" {
		t.Errorf("png ext: %s", got)
	}
	if got := ExtensionForMIME("image/jpeg"); got != "jpg" {
		t.Errorf("jpeg ext: %s", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tc := range tests {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
