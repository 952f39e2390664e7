package classifier

import (
	"encoding/binary"
	"hash/crc32"
	"strings"
	"testing"
)

func TestPreprocessShapeAndRange(t *testing.T) {
	p, err := NewPreprocessor(PreprocessConfig{Width: 16, Height: 12})
	if err != nil { t.Fatalf("new: %v", err) }
	for _, format := range []string{"png", "jpeg", "gif"} {
		raw := encodeSolid(t, format, blue, 40, 25)
		tensor, err := p.Preprocess(raw)
		if err != nil { t.Fatalf("%s: preprocess: %v", format, err) }
		want := []int64{1, 12, 16, 3}
		if len(tensor.Shape) != 4 { t.Fatalf("%s: shape=%v", format, tensor.Shape) }
		for i := range want {
			if tensor.Shape[i] != want[i] { t.Fatalf("%s: shape=%v want %v", format, tensor.Shape, want) }
		}
		if err := tensor.Validate(); err != nil { t.Fatalf("%s: %v", format, err) }
		for i, v := range tensor.Data {
			if v < 0 || v > 1 { t.Fatalf("%s: value %f at %d outside [0,1]", format, v, i) }
		}
		// solid blue: every pixel's B channel is (near) 1, R and G (near) 0
		if b := tensor.Data[2]; b < 0.95 { t.Fatalf("%s: blue channel=%f", format, b) }
		if r := tensor.Data[0]; r > 0.05 { t.Fatalf("%s: red channel=%f", format, r) }
	}
}

func TestPreprocessNCHW(t *testing.T) {
	p, err := NewPreprocessor(PreprocessConfig{Width: 4, Height: 4, Layout: LayoutNCHW, Filter: "nearest"})
	if err != nil { t.Fatalf("new: %v", err) }
	tensor, err := p.Preprocess(encodeSolid(t, "png", red, 8, 8))
	if err != nil { t.Fatalf("preprocess: %v", err) }
	if tensor.Shape[1] != 3 || tensor.Shape[2] != 4 || tensor.Shape[3] != 4 { t.Fatalf("shape=%v", tensor.Shape) }
	plane := 16
	for i := 0; i < plane; i++ {
		if tensor.Data[i] != 1 || tensor.Data[plane+i] != 0 || tensor.Data[2*plane+i] != 0 {
			t.Fatalf("pixel %d not pure red: %f %f %f", i, tensor.Data[i], tensor.Data[plane+i], tensor.Data[2*plane+i])
		}
	}
}

func TestPreprocessIsDeterministic(t *testing.T) {
	p, _ := NewPreprocessor(PreprocessConfig{Width: 8, Height: 8, Filter: "lanczos3"})
	raw := encodeSolid(t, "jpeg", green, 31, 17)
	a, err := p.Preprocess(raw)
	if err != nil { t.Fatalf("preprocess: %v", err) }
	b, _ := p.Preprocess(raw)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] { t.Fatalf("value %d differs: %f vs %f", i, a.Data[i], b.Data[i]) }
	}
}

func TestPreprocessRejectsCorruptBytes(t *testing.T) {
	p, _ := NewPreprocessor(PreprocessConfig{Width: 8, Height: 8})
	for name, raw := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"truncated": encodeSolid(t, "png", red, 8, 8)[:20],
	} {
		if _, err := p.Preprocess(raw); !IsPreprocess(err) {
			t.Fatalf("%s: expected PreprocessError, got %v", name, err)
		}
	}
}

func TestNewPreprocessorValidation(t *testing.T) {
	bad := []PreprocessConfig{
		{Width: 0, Height: 8},
		{Width: 8, Height: 8, Layout: "chw"},
		{Width: 8, Height: 8, Filter: "mitchell"},
	}
	for _, cfg := range bad {
		if _, err := NewPreprocessor(cfg); err == nil { t.Fatalf("expected error for %+v", cfg) }
	}
}

// pngWithSize returns a small PNG whose IHDR declares w×h. Only the header is
// valid for that size, so any attempt at a full decode would fail or allocate.
func pngWithSize(t *testing.T, w, h uint32) []byte {
	t.Helper()
	raw := encodeSolid(t, "png", red, 1, 1)
	if string(raw[12:16]) != "IHDR" {
		t.Fatalf("unexpected png layout")
	}
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestPreprocessRejectsOversizedImageBeforeDecode(t *testing.T) {
	p, _ := NewPreprocessor(PreprocessConfig{Width: 224, Height: 224})
	raw := pngWithSize(t, 12000, 12000)
	_, err := p.Preprocess(raw)
	if !IsPreprocess(err) {
		t.Fatalf("expected PreprocessError, got %v", err)
	}
	if !strings.Contains(err.Error(), "12000x12000") {
		t.Fatalf("error should name the dimensions: %v", err)
	}
}

func TestPreprocessMaxPixelsConfigurable(t *testing.T) {
	p, _ := NewPreprocessor(PreprocessConfig{Width: 4, Height: 4, MaxPixels: 100})
	if _, err := p.Preprocess(encodeSolid(t, "png", red, 10, 10)); err != nil {
		t.Fatalf("10x10 is within the limit: %v", err)
	}
	if _, err := p.Preprocess(encodeSolid(t, "jpeg", red, 11, 10)); !IsPreprocess(err) {
		t.Fatalf("11x10 should be rejected, got %v", err)
	}
}
