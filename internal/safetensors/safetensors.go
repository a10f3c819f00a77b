// Package safetensors reads the safetensors tensor container format: an
// 8-byte little-endian header length, a JSON table of tensor descriptors,
// and a raw byte payload the descriptors point into.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// maxHeaderSize guards against corrupt files claiming absurd header lengths.
const maxHeaderSize = 100 << 20

// tensorInfo is one entry of the JSON header.
type tensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// File is a parsed safetensors file with its payload held in memory.
type File struct {
	tensors map[string]tensorInfo
	data    []byte
}

// Open reads and parses the safetensors file at path.
func Open(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read safetensors file: %w", err)
	}
	if len(raw) < 8 {
		return nil, fmt.Errorf("safetensors file %s is truncated", path)
	}
	headerLen := binary.LittleEndian.Uint64(raw[:8])
	if headerLen > maxHeaderSize || int(headerLen) > len(raw)-8 {
		return nil, fmt.Errorf("safetensors header length %d out of range", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(raw[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("failed to parse safetensors header: %w", err)
	}

	f := &File{
		tensors: make(map[string]tensorInfo, len(header)),
		data:    raw[8+headerLen:],
	}
	for name, entry := range header {
		if name == "__metadata__" {
			continue
		}
		var info tensorInfo
		if err := json.Unmarshal(entry, &info); err != nil {
			return nil, fmt.Errorf("failed to parse tensor entry %q: %w", name, err)
		}
		if info.DataOffsets[0] < 0 || info.DataOffsets[1] < info.DataOffsets[0] ||
			info.DataOffsets[1] > int64(len(f.data)) {
			return nil, fmt.Errorf("tensor %q has offsets outside the payload", name)
		}
		f.tensors[name] = info
	}
	return f, nil
}

// Names returns the tensor names present in the file.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.tensors))
	for name := range f.tensors {
		names = append(names, name)
	}
	return names
}

// Has reports whether a tensor with the given name exists.
func (f *File) Has(name string) bool {
	_, ok := f.tensors[name]
	return ok
}

// Float32 returns the tensor data and shape for name. The tensor must be
// stored as F32.
func (f *File) Float32(name string) ([]float32, []int, error) {
	info, ok := f.tensors[name]
	if !ok {
		return nil, nil, fmt.Errorf("tensor %q not found", name)
	}
	if info.DType != "F32" {
		return nil, nil, fmt.Errorf("tensor %q has dtype %s, want F32", name, info.DType)
	}
	raw := f.data[info.DataOffsets[0]:info.DataOffsets[1]]
	if len(raw)%4 != 0 {
		return nil, nil, fmt.Errorf("tensor %q payload is not a multiple of 4 bytes", name)
	}
	n := len(raw) / 4
	if want := elemCount(info.Shape); want != n {
		return nil, nil, fmt.Errorf("tensor %q has %d elements, shape wants %d", name, n, want)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, append([]int(nil), info.Shape...), nil
}

func elemCount(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
