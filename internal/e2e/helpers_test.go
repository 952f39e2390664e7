package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"imgclassd/internal/classifier"
	"imgclassd/internal/httpapi"
	"imgclassd/internal/store"
)

const inputSize = 8

// colorRuntime scores red, green and blue by the mean of each channel of an
// NHWC input, normalized to sum to 1.
type colorRuntime struct{}

func (colorRuntime) Run(in classifier.Tensor) (classifier.RawOutput, error) {
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
	return classifier.SingleOutput(classifier.Tensor{Shape: []int64{1, 3}, Data: scores}), nil
}
func (colorRuntime) InputShape() []int64 { return []int64{1, inputSize, inputSize, 3} }
func (colorRuntime) Outputs() []classifier.OutputInfo {
	return []classifier.OutputInfo{{Name: classifier.DefaultOutputName, Shape: []int64{1, 3}}}
}
func (colorRuntime) Close() error { return nil }

type testEnv struct {
	srv       *httptest.Server
	uploadDir string
	store     store.Store
}

// newServer wires the real pipeline behind httptest: the color runtime (or a
// failing opener when loaded is false), a SQLite store and a temp upload dir.
func newServer(t *testing.T, loaded bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	open := classifier.Opener(func(string) (classifier.Runtime, error) { return colorRuntime{}, nil })
	if !loaded {
		open = func(string) (classifier.Runtime, error) { return nil, errors.New("model.onnx: no such file") }
	}
	eng := classifier.NewEngine(open, 0)
	_ = eng.Load(filepath.Join(dir, "model.onnx"))

	pre, err := classifier.NewPreprocessor(classifier.PreprocessConfig{Width: inputSize, Height: inputSize})
	if err != nil {
		t.Fatalf("preprocessor: %v", err)
	}
	cat, err := classifier.NewCatalog([]string{"red", "green", "blue"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	uploads := filepath.Join(dir, "uploads")
	files, err := classifier.NewFileStore(uploads)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	st, err := store.OpenSQLite(context.Background(), filepath.Join(dir, "images.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	svc, err := classifier.NewService(classifier.Config{
		Engine:            eng,
		Preprocessor:      pre,
		Catalog:           cat,
		Files:             files,
		Store:             st,
		Logger:            zerolog.Nop(),
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, uploadDir: uploads, store: st}
}

func solidJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	return buf.Bytes()
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// upload posts data as the multipart field "file" and returns status and body.
func upload(url, filename string, data []byte) (int, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return 0, nil, err
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func httpUpload(t *testing.T, url, filename string, data []byte) (int, []byte) {
	t.Helper()
	code, body, err := upload(url, filename, data)
	if err != nil {
		t.Fatalf("upload %s: %v", filename, err)
	}
	return code, body
}

func decodeJSON(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json: %v body=%q", err, body)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}
