package compress

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

func noiseImage(w, h int, seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestQualityLadderFitsBudgetOrHitsFloor(t *testing.T) {
	const target = 200 * 1024
	ladder := NewQualityLadder(target, 85, 5, 20)
	original := encodeJPEG(t, noiseImage(2400, 1800, 1), 95)
	if len(original) <= target {
		t.Fatalf("fixture too small: %d bytes", len(original))
	}

	res, err := ladder.Compress(original)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	if len(res.Data) > target && res.Quality != 20 {
		t.Errorf("output %d bytes at quality %d: over budget without reaching the floor", len(res.Data), res.Quality)
	}
	// 14 encodes per tier (85..20 step 5), two tiers at most.
	if res.Attempts > 28 {
		t.Errorf("Attempts = %d, want <= 28", res.Attempts)
	}
	if !res.Resized {
		t.Error("Resized = false, want noise image to need the second tier")
	}
	if res.Width >= 2400 || res.Height >= 1800 {
		t.Errorf("dimensions = %dx%d, want downscaled", res.Width, res.Height)
	}
	if res.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q", res.ContentType)
	}
	if _, err := jpeg.Decode(bytes.NewReader(res.Data)); err != nil {
		t.Errorf("output is not a valid jpeg: %v", err)
	}
}

func TestQualityLadderSmallImageSingleEncode(t *testing.T) {
	ladder := NewQualityLadder(200*1024, 85, 5, 20)

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	res, err := ladder.Compress(buf.Bytes())
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if res.Attempts != 1 || res.Quality != 85 || res.Resized {
		t.Errorf("result = attempts %d quality %d resized %v, want one encode at 85", res.Attempts, res.Quality, res.Resized)
	}
	if res.Width != 64 || res.Height != 48 {
		t.Errorf("dimensions = %dx%d", res.Width, res.Height)
	}
}

func TestQualityLadderRejectsGarbage(t *testing.T) {
	ladder := NewQualityLadder(200*1024, 85, 5, 20)
	if _, err := ladder.Compress([]byte("definitely not an image")); err == nil {
		t.Error("Compress() expected error for undecodable input")
	}
}

func TestNewQualityLadderNormalizes(t *testing.T) {
	tests := []struct {
		name                         string
		start, step, min             int
		wantStart, wantStep, wantMin int
	}{
		{name: "valid", start: 85, step: 5, min: 20, wantStart: 85, wantStep: 5, wantMin: 20},
		{name: "zero step", start: 85, step: 0, min: 20, wantStart: 85, wantStep: 5, wantMin: 20},
		{name: "floor above start", start: 60, step: 5, min: 70, wantStart: 60, wantStep: 5, wantMin: 60},
		{name: "start out of range", start: 150, step: 5, min: 20, wantStart: 85, wantStep: 5, wantMin: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQualityLadder(1000, tt.start, tt.step, tt.min)
			if q.StartQuality != tt.wantStart || q.Step != tt.wantStep || q.MinQuality != tt.wantMin {
				t.Errorf("got %d/%d/%d, want %d/%d/%d", q.StartQuality, q.Step, q.MinQuality, tt.wantStart, tt.wantStep, tt.wantMin)
			}
		})
	}
}

func TestNonePassesThrough(t *testing.T) {
	in := []byte{0xff, 0xd8, 0xff}
	res, err := None{}.Compress(in)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if !bytes.Equal(res.Data, in) || res.ContentType != "" {
		t.Errorf("None.Compress() = %+v", res)
	}
}
