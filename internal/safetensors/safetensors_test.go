package safetensors

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile builds a safetensors file with one tensor per entry.
func writeFile(t *testing.T, tensors map[string]struct {
	dtype string
	shape []int
	data  []float32
}) string {
	t.Helper()
	entries := make(map[string]interface{}, len(tensors))
	var payload bytes.Buffer
	for name, tensor := range tensors {
		start := payload.Len()
		for _, v := range tensor.data {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			payload.Write(buf[:])
		}
		entries[name] = map[string]interface{}{
			"dtype":        tensor.dtype,
			"shape":        tensor.shape,
			"data_offsets": []int{start, payload.Len()},
		}
	}
	header, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(header)))
	out.Write(lenBuf[:])
	out.Write(header)
	out.Write(payload.Bytes())

	path := filepath.Join(t.TempDir(), "model.safetensors")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAndFloat32(t *testing.T) {
	want := []float32{1.5, -2.25, 0, 3.125}
	path := writeFile(t, map[string]struct {
		dtype string
		shape []int
		data  []float32
	}{
		"weights": {dtype: "F32", shape: []int{2, 2}, data: want},
	})

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !f.Has("weights") {
		t.Error("Has(weights) = false")
	}
	if f.Has("missing") {
		t.Error("Has(missing) = true")
	}

	data, shape, err := f.Float32("weights")
	if err != nil {
		t.Fatalf("Float32: %v", err)
	}
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Errorf("shape = %v", shape)
	}
	for i, v := range want {
		if data[i] != v {
			t.Errorf("data[%d] = %v, want %v", i, data[i], v)
		}
	}
}

func TestFloat32_missingTensor(t *testing.T) {
	path := writeFile(t, map[string]struct {
		dtype string
		shape []int
		data  []float32
	}{
		"weights": {dtype: "F32", shape: []int{1}, data: []float32{1}},
	})
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.Float32("other"); err == nil {
		t.Error("expected error for missing tensor")
	}
}

func TestFloat32_wrongDtype(t *testing.T) {
	path := writeFile(t, map[string]struct {
		dtype string
		shape []int
		data  []float32
	}{
		"weights": {dtype: "F16", shape: []int{1}, data: []float32{1}},
	})
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = f.Float32("weights")
	if err == nil || !strings.Contains(err.Error(), "F32") {
		t.Errorf("expected dtype error, got %v", err)
	}
}

func TestOpen_truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.safetensors")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestOpen_headerLengthOutOfRange(t *testing.T) {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], 1<<40)
	path := filepath.Join(t.TempDir(), "bad.safetensors")
	if err := os.WriteFile(path, buf[:], 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for oversized header length")
	}
}

func TestOpen_missingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.safetensors")); err == nil {
		t.Error("expected error for missing file")
	}
}
