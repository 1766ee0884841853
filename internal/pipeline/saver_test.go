package pipeline

import (
	"bytes"
	"image"
	"testing"
)

func loadTestImage(t *testing.T) *ImageData {
	t.Helper()

	path := writeTestPNG(t, t.TempDir(), "input.png", 24, 16)
	loader := NewLoader(newTestMemoryManager(), testLog)

	imageData, err := loader.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	t.Cleanup(imageData.Close)

	return imageData
}

func TestSaveToWriterEncodesPNG(t *testing.T) {
	imageData := loadTestImage(t)
	saver := NewSaver(testLog)

	var buf bytes.Buffer
	if err := saver.SaveToWriter(&buf, imageData, "png"); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	decoded, format, err := image.Decode(&buf)
	if err != nil {
		t.Fatalf("output did not decode: %v", err)
	}
	if format != "png" {
		t.Errorf("output format = %s, want png", format)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 24 || bounds.Dy() != 16 {
		t.Errorf("output size = %dx%d, want 24x16", bounds.Dx(), bounds.Dy())
	}
}

func TestSaveToWriterEncodesJPEG(t *testing.T) {
	imageData := loadTestImage(t)
	saver := NewSaver(testLog)

	var buf bytes.Buffer
	if err := saver.SaveToWriter(&buf, imageData, "jpeg"); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	jpegMagic := []byte{0xFF, 0xD8}
	if buf.Len() < len(jpegMagic) || !bytes.Equal(buf.Bytes()[:2], jpegMagic) {
		t.Error("SaveToWriter did not produce a JPEG")
	}
}

func TestSaveToWriterConvertsMatWhenImageMissing(t *testing.T) {
	imageData := loadTestImage(t)
	imageData.Image = nil

	saver := NewSaver(testLog)

	var buf bytes.Buffer
	if err := saver.SaveToWriter(&buf, imageData, "png"); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	decoded, _, err := image.Decode(&buf)
	if err != nil {
		t.Fatalf("output did not decode: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 24 || bounds.Dy() != 16 {
		t.Errorf("output size = %dx%d, want 24x16", bounds.Dx(), bounds.Dy())
	}
}

func TestSaveToWriterUnknownFormatFallsBackToPNG(t *testing.T) {
	imageData := loadTestImage(t)
	saver := NewSaver(testLog)

	var buf bytes.Buffer
	if err := saver.SaveToWriter(&buf, imageData, "webp"); err != nil {
		t.Fatalf("SaveToWriter failed: %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if buf.Len() < len(pngMagic) || !bytes.Equal(buf.Bytes()[:4], pngMagic) {
		t.Error("expected PNG fallback output")
	}
}

func TestSaveToWriterRejectsNilData(t *testing.T) {
	saver := NewSaver(testLog)

	var buf bytes.Buffer
	if err := saver.SaveToWriter(&buf, nil, "png"); err == nil {
		t.Error("expected error for nil image data")
	}
}
