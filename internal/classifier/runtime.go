package classifier

import "fmt"

// DefaultOutputName names the output of runtimes that do not declare one.
const DefaultOutputName = "output"

// Tensor is a dense float32 tensor in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Elements returns the product of the shape dimensions.
func (t Tensor) Elements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// Validate checks that Data has exactly as many elements as Shape implies.
func (t Tensor) Validate() error {
	if want := t.Elements(); want != len(t.Data) {
		return fmt.Errorf("tensor shape %v wants %d values, got %d", t.Shape, want, len(t.Data))
	}
	return nil
}

// RawOutput is the result of one forward pass. Names keeps the runtime's
// declared output order; Tensors is keyed by those names.
type RawOutput struct {
	Names   []string
	Tensors map[string]Tensor
}

// SingleOutput wraps one tensor under DefaultOutputName.
func SingleOutput(t Tensor) RawOutput {
	return RawOutput{Names: []string{DefaultOutputName}, Tensors: map[string]Tensor{DefaultOutputName: t}}
}

// OutputInfo describes one declared model output.
type OutputInfo struct {
	Name  string
	Shape []int64
}

// Runtime abstracts the model backend. Implementations need not be safe for
// concurrent use; Engine serializes calls to Run.
type Runtime interface {
	// Run performs one forward pass. It must not retain input after returning.
	Run(input Tensor) (RawOutput, error)
	// InputShape is the fixed input shape including the batch dimension.
	InputShape() []int64
	// Outputs describes the declared outputs in order; the first is authoritative.
	Outputs() []OutputInfo
	// Close releases the model handle.
	Close() error
}

// Opener loads a model artifact into a Runtime.
type Opener func(modelPath string) (Runtime, error)
