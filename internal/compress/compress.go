package compress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"math"

	"github.com/bitelog/bite/internal/config"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Policy prepares photo bytes for storage.
type Policy interface {
	Name() string
	Compress(data []byte) (*Result, error)
}

type Result struct {
	Data        []byte
	ContentType string // Empty when the input was passed through untouched
	Quality     int
	Width       int
	Height      int
	Attempts    int // JPEG encodes performed
	Resized     bool
}

// New returns the policy selected by config.
func New(c *config.Config) Policy {
	if c.CompressionPolicy == "none" {
		return None{}
	}
	return NewQualityLadder(c.CompressionTargetBytes, c.CompressionStart, c.CompressionStep, c.CompressionMin)
}

// None stores photos as uploaded.
type None struct{}

func (None) Name() string { return "none" }

func (None) Compress(data []byte) (*Result, error) {
	return &Result{Data: data}, nil
}

// QualityLadder re-encodes to JPEG, lowering quality until the output fits
// TargetBytes. If the floor quality is still too large the image is scaled
// by sqrt(target/size) once and the ladder runs again, so at most two tiers
// of encodes happen.
type QualityLadder struct {
	TargetBytes  int
	StartQuality int
	Step         int
	MinQuality   int
}

func NewQualityLadder(target, start, step, floor int) *QualityLadder {
	if start < 1 || start > 100 {
		start = 85
	}
	if step < 1 {
		step = 5
	}
	if floor < 1 || floor > start {
		floor = start
	}
	return &QualityLadder{TargetBytes: target, StartQuality: start, Step: step, MinQuality: floor}
}

func (q *QualityLadder) Name() string { return "quality_ladder" }

func (q *QualityLadder) Compress(data []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	res, err := q.ladder(img)
	if err != nil {
		return nil, err
	}
	if len(res.Data) <= q.TargetBytes {
		return res, nil
	}

	factor := math.Sqrt(float64(q.TargetBytes) / float64(len(res.Data)))
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	resized := imaging.Resize(img, w, h, imaging.Lanczos)

	second, err := q.ladder(resized)
	if err != nil {
		return nil, err
	}
	second.Attempts += res.Attempts
	second.Resized = true
	return second, nil
}

// ladder encodes from StartQuality down to MinQuality and stops at the first
// output within budget. The last encode is returned when none fits.
func (q *QualityLadder) ladder(img image.Image) (*Result, error) {
	b := img.Bounds()
	res := &Result{ContentType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}

	var buf bytes.Buffer
	for quality := q.StartQuality; quality >= q.MinQuality; quality -= q.Step {
		buf.Reset()
		err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			return nil, fmt.Errorf("failed to encode jpeg at quality %d: %w", quality, err)
		}
		res.Attempts++
		res.Quality = quality
		if buf.Len() <= q.TargetBytes {
			break
		}
	}

	res.Data = bytes.Clone(buf.Bytes())
	return res, nil
}
