// Package modeltest writes tiny but fully valid model checkpoints for
// tests: a WordPiece tokenizer.json, a one-layer config.json, and a
// model.safetensors with deterministic pseudo-random weights.
package modeltest

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Dimensions of the test checkpoint.
const (
	HiddenSize       = 8
	NumLayers        = 1
	NumHeads         = 2
	IntermediateSize = 16
	VocabSize        = 12
	MaxPositions     = 16
)

// Vocab is the WordPiece vocabulary of the test tokenizer.
var Vocab = map[string]int64{
	"[PAD]": 0,
	"[UNK]": 1,
	"[CLS]": 2,
	"[SEP]": 3,
	"hello": 4,
	"world": 5,
	"um":    6,
	"##eko": 7,
	"##mi":  8,
	"!":     9,
	"a":     10,
	"##b":   11,
}

// WriteCheckpoint writes the three artifact files into dir.
func WriteCheckpoint(dir string) error {
	if err := writeTokenizer(filepath.Join(dir, "tokenizer.json")); err != nil {
		return err
	}
	if err := writeConfig(filepath.Join(dir, "config.json")); err != nil {
		return err
	}
	return writeWeights(filepath.Join(dir, "model.safetensors"))
}

func writeTokenizer(path string) error {
	doc := map[string]interface{}{
		"normalizer": map[string]interface{}{
			"type":      "BertNormalizer",
			"lowercase": true,
		},
		"pre_tokenizer": map[string]interface{}{"type": "BertPreTokenizer"},
		"model": map[string]interface{}{
			"type":                      "WordPiece",
			"unk_token":                 "[UNK]",
			"continuing_subword_prefix": "##",
			"max_input_chars_per_word":  100,
			"vocab":                     Vocab,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeConfig(path string) error {
	doc := map[string]interface{}{
		"hidden_size":             HiddenSize,
		"num_hidden_layers":       NumLayers,
		"num_attention_heads":     NumHeads,
		"intermediate_size":       IntermediateSize,
		"vocab_size":              VocabSize,
		"max_position_embeddings": MaxPositions,
		"type_vocab_size":         2,
		"layer_norm_eps":          1e-12,
		"hidden_act":              "gelu",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeWeights(path string) error {
	tensors := []struct {
		name  string
		shape []int
		fill  func(i int) float32
	}{
		{"embeddings.word_embeddings.weight", []int{VocabSize, HiddenSize}, smallValue},
		{"embeddings.position_embeddings.weight", []int{MaxPositions, HiddenSize}, smallValue},
		{"embeddings.token_type_embeddings.weight", []int{2, HiddenSize}, smallValue},
		{"embeddings.LayerNorm.weight", []int{HiddenSize}, one},
		{"embeddings.LayerNorm.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.attention.self.query.weight", []int{HiddenSize, HiddenSize}, smallValue},
		{"encoder.layer.0.attention.self.query.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.attention.self.key.weight", []int{HiddenSize, HiddenSize}, smallValue},
		{"encoder.layer.0.attention.self.key.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.attention.self.value.weight", []int{HiddenSize, HiddenSize}, smallValue},
		{"encoder.layer.0.attention.self.value.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.attention.output.dense.weight", []int{HiddenSize, HiddenSize}, smallValue},
		{"encoder.layer.0.attention.output.dense.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.attention.output.LayerNorm.weight", []int{HiddenSize}, one},
		{"encoder.layer.0.attention.output.LayerNorm.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.intermediate.dense.weight", []int{IntermediateSize, HiddenSize}, smallValue},
		{"encoder.layer.0.intermediate.dense.bias", []int{IntermediateSize}, zero},
		{"encoder.layer.0.output.dense.weight", []int{HiddenSize, IntermediateSize}, smallValue},
		{"encoder.layer.0.output.dense.bias", []int{HiddenSize}, zero},
		{"encoder.layer.0.output.LayerNorm.weight", []int{HiddenSize}, one},
		{"encoder.layer.0.output.LayerNorm.bias", []int{HiddenSize}, zero},
	}

	entries := make(map[string]interface{}, len(tensors))
	var payload bytes.Buffer
	for _, tensor := range tensors {
		n := 1
		for _, d := range tensor.shape {
			n *= d
		}
		start := payload.Len()
		for i := 0; i < n; i++ {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(tensor.fill(i)))
			payload.Write(buf[:])
		}
		entries[tensor.name] = map[string]interface{}{
			"dtype":        "F32",
			"shape":        tensor.shape,
			"data_offsets": []int{start, payload.Len()},
		}
	}
	header, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(header)))
	out.Write(lenBuf[:])
	out.Write(header)
	out.Write(payload.Bytes())
	return os.WriteFile(path, out.Bytes(), 0644)
}

// smallValue is a deterministic pseudo-random value in roughly [-0.1, 0.1].
func smallValue(i int) float32 {
	x := uint32(i*2654435761 + 12345)
	x ^= x >> 13
	x *= 2246822519
	x ^= x >> 16
	return (float32(x%2000)/1000 - 1) * 0.1
}

func one(int) float32  { return 1 }
func zero(int) float32 { return 0 }

// CheckpointDir creates a checkpoint in a fresh subdirectory of parent and
// returns its path.
func CheckpointDir(parent string) (string, error) {
	dir := filepath.Join(parent, "checkpoint")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := WriteCheckpoint(dir); err != nil {
		return "", fmt.Errorf("failed to write test checkpoint: %w", err)
	}
	return dir, nil
}
