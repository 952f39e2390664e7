package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // registers image.Decode support for WebP
)

// Layout is the memory order of the model input tensor.
type Layout string

const (
	LayoutNHWC Layout = "nhwc" // [1, H, W, 3]
	LayoutNCHW Layout = "nchw" // [1, 3, H, W]
)

const channels = 3

// DefaultMaxPixels bounds the decoded size of an upload (width × height).
const DefaultMaxPixels = 50_000_000

var resizeFilters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"lanczos3": resize.Lanczos3,
}

// PreprocessConfig fixes the model input geometry.
type PreprocessConfig struct {
	Width  int
	Height int
	Layout Layout
	// Filter is one of nearest|bilinear|bicubic|lanczos3. Empty means bilinear.
	Filter string
	// MaxPixels rejects images whose header declares more pixels. 0 means DefaultMaxPixels.
	MaxPixels int
}

// Preprocessor turns encoded image bytes into the model's input tensor.
// Images are stretched to exactly Width×Height (aspect ratio is not kept) and
// 8-bit channel values are divided by 255, so every value lies in [0,1].
type Preprocessor struct {
	width, height int
	layout        Layout
	filter        resize.InterpolationFunction
	maxPixels     int
}

// NewPreprocessor validates cfg and returns a Preprocessor.
func NewPreprocessor(cfg PreprocessConfig) (*Preprocessor, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("preprocess: invalid input size %dx%d", cfg.Width, cfg.Height)
	}
	layout := Layout(strings.ToLower(string(cfg.Layout)))
	if layout == "" {
		layout = LayoutNHWC
	}
	if layout != LayoutNHWC && layout != LayoutNCHW {
		return nil, fmt.Errorf("preprocess: unknown layout %q", cfg.Layout)
	}
	name := strings.ToLower(cfg.Filter)
	if name == "" {
		name = "bilinear"
	}
	f, ok := resizeFilters[name]
	if !ok {
		return nil, fmt.Errorf("preprocess: unknown resize filter %q", cfg.Filter)
	}
	maxPixels := cfg.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Preprocessor{width: cfg.Width, height: cfg.Height, layout: layout, filter: f, maxPixels: maxPixels}, nil
}

// Shape returns the tensor shape produced by Preprocess.
func (p *Preprocessor) Shape() []int64 {
	h, w := int64(p.height), int64(p.width)
	if p.layout == LayoutNCHW {
		return []int64{1, channels, h, w}
	}
	return []int64{1, h, w, channels}
}

// Preprocess decodes raw image bytes and returns the normalized input tensor.
// Any decoding failure is a PreprocessError, as is a header declaring more
// than MaxPixels pixels; such images are never fully decoded.
func (p *Preprocessor) Preprocess(raw []byte) (Tensor, error) {
	if len(raw) == 0 {
		return Tensor{}, preprocessError{err: errors.New("empty file")}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Tensor{}, preprocessError{err: err}
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > int64(p.maxPixels) {
		return Tensor{}, preprocessError{err: fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, p.maxPixels)}
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return Tensor{}, preprocessError{err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Tensor{}, preprocessError{err: errors.New("image has no pixels")}
	}
	return p.FromImage(img), nil
}

// FromImage resizes and normalizes an already decoded image.
func (p *Preprocessor) FromImage(img image.Image) Tensor {
	resized := resize.Resize(uint(p.width), uint(p.height), img, p.filter)
	b := resized.Bounds()
	plane := p.width * p.height
	data := make([]float32, channels*plane)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			// NRGBA gives 8-bit non-premultiplied channels; 16-bit sources are scaled down.
			c := color.NRGBAModel.Convert(resized.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			r, g, bl := float32(c.R)/255.0, float32(c.G)/255.0, float32(c.B)/255.0
			if p.layout == LayoutNCHW {
				i := y*p.width + x
				data[i] = r
				data[plane+i] = g
				data[2*plane+i] = bl
				continue
			}
			i := (y*p.width + x) * channels
			data[i] = r
			data[i+1] = g
			data[i+2] = bl
		}
	}
	return Tensor{Shape: p.Shape(), Data: data}
}
