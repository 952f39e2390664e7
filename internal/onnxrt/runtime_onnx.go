//go:build onnx

package onnxrt

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"imgclassd/internal/classifier"
)

// Available reports whether ONNX support was compiled in.
func Available() bool { return true }

var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	})
	return envErr
}

// Shutdown releases the ONNX environment. Call after every Session is closed.
func Shutdown() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// NewOpener returns a classifier.Opener backed by ONNX Runtime.
func NewOpener(opts Options) classifier.Opener {
	return func(modelPath string) (classifier.Runtime, error) {
		s, err := Open(modelPath, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Session is a single-input float32 model with preallocated tensors.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	outputs []*ort.Tensor[float32]
	info    []classifier.OutputInfo
	inShape []int64
}

var _ classifier.Runtime = (*Session)(nil)

// Open inspects the model, allocates tensors for its declared shapes and
// creates the session.
func Open(modelPath string, opts Options) (*Session, error) {
	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, err
	}
	ins, outs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if len(ins) != 1 {
		return nil, fmt.Errorf("model has %d inputs, want 1", len(ins))
	}
	if len(outs) == 0 {
		return nil, errors.New("model declares no outputs")
	}
	if ins[0].DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("input %q is %v, want float", ins[0].Name, ins[0].DataType)
	}
	inShape, err := concreteShape(ins[0].Dimensions, opts.InputShape)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", ins[0].Name, err)
	}

	s := &Session{inShape: inShape}
	s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(inShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outNames := make([]string, 0, len(outs))
	outValues := make([]ort.ArbitraryTensor, 0, len(outs))
	for _, o := range outs {
		if o.DataType != ort.TensorElementDataTypeFloat {
			s.Close()
			return nil, fmt.Errorf("output %q is %v, want float", o.Name, o.DataType)
		}
		shape, err := concreteShape(o.Dimensions, nil)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("output %q: %w", o.Name, err)
		}
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(shape...))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create output tensor: %w", err)
		}
		s.outputs = append(s.outputs, t)
		s.info = append(s.info, classifier.OutputInfo{Name: o.Name, Shape: shape})
		outNames = append(outNames, o.Name)
		outValues = append(outValues, t)
	}

	s.session, err = ort.NewAdvancedSession(modelPath,
		[]string{ins[0].Name}, outNames,
		[]ort.ArbitraryTensor{s.input}, outValues,
		nil)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return s, nil
}

// concreteShape resolves dynamic dims from hint (same rank) or, for the batch
// dim only, to 1.
func concreteShape(dims ort.Shape, hint []int64) ([]int64, error) {
	out := make([]int64, len(dims))
	for i, d := range dims {
		switch {
		case d > 0:
			out[i] = d
		case len(hint) == len(dims) && hint[i] > 0:
			out[i] = hint[i]
		case i == 0:
			out[i] = 1
		default:
			return nil, fmt.Errorf("dynamic dimension %d in %v", i, dims)
		}
	}
	return out, nil
}

func (s *Session) Run(in classifier.Tensor) (classifier.RawOutput, error) {
	dst := s.input.GetData()
	if len(in.Data) != len(dst) {
		return classifier.RawOutput{}, fmt.Errorf("input has %d values, model wants %d", len(in.Data), len(dst))
	}
	copy(dst, in.Data)
	if err := s.session.Run(); err != nil {
		return classifier.RawOutput{}, fmt.Errorf("inference failed: %w", err)
	}
	out := classifier.RawOutput{Tensors: make(map[string]classifier.Tensor, len(s.outputs))}
	for i, t := range s.outputs {
		data := make([]float32, len(t.GetData()))
		copy(data, t.GetData())
		name := s.info[i].Name
		out.Names = append(out.Names, name)
		out.Tensors[name] = classifier.Tensor{Shape: append([]int64(nil), s.info[i].Shape...), Data: data}
	}
	return out, nil
}

func (s *Session) InputShape() []int64 { return s.inShape }

func (s *Session) Outputs() []classifier.OutputInfo {
	return append([]classifier.OutputInfo(nil), s.info...)
}

func (s *Session) Close() error {
	var errs []error
	if s.session != nil {
		errs = append(errs, s.session.Destroy())
		s.session = nil
	}
	if s.input != nil {
		errs = append(errs, s.input.Destroy())
		s.input = nil
	}
	for _, t := range s.outputs {
		errs = append(errs, t.Destroy())
	}
	s.outputs = nil
	return errors.Join(errs...)
}
