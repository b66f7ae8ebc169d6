package render

import (
	"image"
	"testing"
)

func TestFrameImageClamps(t *testing.T) {
	f := NewFrame(2, 1)
	f.Pix[0] = Color{1.5, 0.5, -1}
	f.Pix[1] = Color{0, 1, 0.2}
	img := f.Image(nil)
	got := []byte{img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[4], img.Pix[5], img.Pix[6]}
	want := []byte{255, 128, 0, 0, 255, 51}
	if string(got) != string(want) {
		t.Fatalf("rgb: got %v want %v", got, want)
	}
}

func TestFrameImageReuse(t *testing.T) {
	f := NewFrame(3, 2)
	f.Set(2, 1, Color{1, 1, 1})
	img := f.Image(nil)
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if c := img.RGBAAt(2, 1); c.R != 255 || c.A != 255 {
		t.Fatalf("pixel %v", c)
	}
	if again := f.Image(img); again != img {
		t.Fatal("same-size image was reallocated")
	}
	f.Resize(4, 4)
	if again := f.Image(img); again == img {
		t.Fatal("resized frame reused stale image")
	}
}
