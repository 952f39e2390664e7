package classifier

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// encodeSolid returns a w×h image of a single color encoded as format (png|jpeg|gif).
func encodeSolid(t *testing.T, format string, c color.Color, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	case "gif":
		// a one-entry palette keeps the color exact (no quantization/dithering)
		pal := image.NewPaletted(img.Bounds(), color.Palette{c})
		err = gif.Encode(&buf, pal, nil)
	default:
		t.Fatalf("unknown format %s", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// colorRuntime is a deterministic fake model: it scores each of the three
// catalog classes (red, green, blue) by the mean of that channel, normalized
// to sum to 1. Input must be NHWC.
type colorRuntime struct {
	shape  []int64
	calls  int
	runErr error
	panics bool
	block  chan struct{}
}

func newColorRuntime(w, h int) *colorRuntime {
	return &colorRuntime{shape: []int64{1, int64(h), int64(w), 3}}
}

func (r *colorRuntime) Run(in Tensor) (RawOutput, error) {
	r.calls++
	if r.block != nil {
		<-r.block
	}
	if r.panics {
		panic("boom")
	}
	if r.runErr != nil {
		return RawOutput{}, r.runErr
	}
	var sum [3]float64
	for i, v := range in.Data {
		sum[i%3] += float64(v)
	}
	total := sum[0] + sum[1] + sum[2]
	scores := make([]float32, 3)
	for i := range scores {
		if total > 0 {
			scores[i] = float32(sum[i] / total)
		}
	}
	return SingleOutput(Tensor{Shape: []int64{1, 3}, Data: scores}), nil
}

func (r *colorRuntime) InputShape() []int64 { return r.shape }
func (r *colorRuntime) Outputs() []OutputInfo {
	return []OutputInfo{{Name: DefaultOutputName, Shape: []int64{1, 3}}}
}
func (r *colorRuntime) Close() error { return nil }

func colorCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]string{"red", "green", "blue"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}
