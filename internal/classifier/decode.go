package classifier

import (
	"errors"
	"fmt"
	"math"
)

// ScoreMode tells the decoder what the model emits.
type ScoreMode string

const (
	// ScoreProbabilities passes scores through; they must already lie in [0,1].
	ScoreProbabilities ScoreMode = "probabilities"
	// ScoreLogits applies softmax before taking the arg-max.
	ScoreLogits ScoreMode = "logits"
)

// ParseScoreMode validates s. The empty string means ScoreProbabilities.
func ParseScoreMode(s string) (ScoreMode, error) {
	switch ScoreMode(s) {
	case "", ScoreProbabilities:
		return ScoreProbabilities, nil
	case ScoreLogits:
		return ScoreLogits, nil
	}
	return "", fmt.Errorf("unknown score mode %q (want probabilities|logits)", s)
}

// Decoded is the arg-max class of one forward pass.
type Decoded struct {
	Index      int
	Label      string
	Confidence float64
}

// Decoder maps raw model output to a catalog label.
type Decoder struct {
	catalog *Catalog
	mode    ScoreMode
}

// NewDecoder returns a decoder over catalog.
func NewDecoder(catalog *Catalog, mode ScoreMode) (*Decoder, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, errors.New("decoder: empty catalog")
	}
	if _, err := ParseScoreMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ScoreProbabilities
	}
	return &Decoder{catalog: catalog, mode: mode}, nil
}

// Mode returns the configured score mode.
func (d *Decoder) Mode() ScoreMode { return d.mode }

// Decode reads the first declared output, takes the first batch row and
// returns its arg-max. Ties go to the lowest index.
func (d *Decoder) Decode(out RawOutput) (Decoded, error) {
	scores, err := FirstRow(out)
	if err != nil {
		return Decoded{}, inferenceError{err: err}
	}
	probs := scores
	if d.mode == ScoreLogits {
		probs = softmax(scores)
	}
	idx := argmax(probs)
	conf := float64(probs[idx])
	if math.IsNaN(conf) || math.IsInf(conf, 0) || conf < 0 || conf > 1 {
		return Decoded{}, inferenceError{err: fmt.Errorf("score %v at index %d is not a probability", conf, idx)}
	}
	label, err := d.catalog.Label(idx)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Index: idx, Label: label, Confidence: conf}, nil
}

// FirstRow returns the per-class scores of the first batch element of the
// first declared output.
func FirstRow(out RawOutput) ([]float32, error) {
	if len(out.Names) == 0 {
		return nil, errors.New("model returned no outputs")
	}
	name := out.Names[0]
	t, ok := out.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("output %q missing from result", name)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := ClassesPerRow(t.Shape)
	if n <= 0 || len(t.Data) < n {
		return nil, fmt.Errorf("output %q has no scores (shape %v)", name, t.Shape)
	}
	return t.Data[:n], nil
}

// ClassesPerRow is the product of the dims after the batch dimension. A
// rank-1 shape is treated as a single unbatched row. Non-positive dims yield 0.
func ClassesPerRow(shape []int64) int {
	switch len(shape) {
	case 0:
		return 0
	case 1:
		if shape[0] <= 0 {
			return 0
		}
		return int(shape[0])
	}
	n := 1
	for _, d := range shape[1:] {
		if d <= 0 {
			return 0
		}
		n *= int(d)
	}
	return n
}

func argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// softmax subtracts the max before exponentiating so large logits stay finite.
func softmax(v []float32) []float32 {
	maxv := float64(v[0])
	for _, x := range v[1:] {
		if float64(x) > maxv {
			maxv = float64(x)
		}
	}
	out := make([]float32, len(v))
	var sum float64
	for i, x := range v {
		e := math.Exp(float64(x) - maxv)
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
