// Package bert implements a CPU float32 BERT-family encoder over weights
// read from a HuggingFace-format checkpoint (config.json + model.safetensors).
package bert

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config mirrors the fields of a transformer config.json that the encoder
// needs. Zero values are filled with BERT-base defaults by ApplyDefaults.
type Config struct {
	HiddenSize            int     `json:"hidden_size"`
	NumHiddenLayers       int     `json:"num_hidden_layers"`
	NumAttentionHeads     int     `json:"num_attention_heads"`
	IntermediateSize      int     `json:"intermediate_size"`
	VocabSize             int     `json:"vocab_size"`
	MaxPositionEmbeddings int     `json:"max_position_embeddings"`
	TypeVocabSize         int     `json:"type_vocab_size"`
	LayerNormEps          float64 `json:"layer_norm_eps"`
	HiddenAct             string  `json:"hidden_act"`
}

// LoadConfig reads and parses config.json at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults sets BERT-base defaults for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.HiddenSize == 0 {
		cfg.HiddenSize = 768
	}
	if cfg.NumHiddenLayers == 0 {
		cfg.NumHiddenLayers = 12
	}
	if cfg.NumAttentionHeads == 0 {
		cfg.NumAttentionHeads = 12
	}
	if cfg.IntermediateSize == 0 {
		cfg.IntermediateSize = 4 * cfg.HiddenSize
	}
	if cfg.VocabSize == 0 {
		cfg.VocabSize = 30522
	}
	if cfg.MaxPositionEmbeddings == 0 {
		cfg.MaxPositionEmbeddings = 512
	}
	if cfg.TypeVocabSize == 0 {
		cfg.TypeVocabSize = 2
	}
	if cfg.LayerNormEps == 0 {
		cfg.LayerNormEps = 1e-12
	}
	if cfg.HiddenAct == "" {
		cfg.HiddenAct = "gelu"
	}
}

// Validate checks the structural constraints the forward pass relies on.
func (cfg *Config) Validate() error {
	if cfg.HiddenSize <= 0 || cfg.NumHiddenLayers <= 0 || cfg.NumAttentionHeads <= 0 {
		return fmt.Errorf("invalid model config: hidden_size=%d num_hidden_layers=%d num_attention_heads=%d",
			cfg.HiddenSize, cfg.NumHiddenLayers, cfg.NumAttentionHeads)
	}
	if cfg.HiddenSize%cfg.NumAttentionHeads != 0 {
		return fmt.Errorf("hidden_size %d is not divisible by num_attention_heads %d",
			cfg.HiddenSize, cfg.NumAttentionHeads)
	}
	switch cfg.HiddenAct {
	case "gelu", "gelu_new", "relu":
	default:
		return fmt.Errorf("unsupported hidden_act %q", cfg.HiddenAct)
	}
	return nil
}
