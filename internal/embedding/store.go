// Package embedding holds the model store and the tokenize-encode-pool
// pipeline that turns a text into a fixed-length vector.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/umekomi/internal/bert"
	"github.com/hyperjump/umekomi/internal/hub"
	"github.com/hyperjump/umekomi/internal/safetensors"
	"github.com/hyperjump/umekomi/internal/tokenizer"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Embed before any successful Load.
var ErrNotLoaded = errors.New("model not loaded")

// Defaults reported before a model is loaded.
const (
	DefaultDim         = 384
	DefaultVocabSize   = 30522
	DefaultContextSize = 512
)

// Store owns the optional loaded model. Loads take the write lock and
// replace the model atomically; readers share the read lock, so a load
// never races an embed and concurrent embeds proceed in parallel.
type Store struct {
	mu        sync.RWMutex
	state     *loadedModel // nil until the first successful Load
	hub       *hub.Client
	cacheSize int
	logger    *zap.Logger
}

// loadedModel groups everything that must become visible together on a
// successful load. The cache lives here so a model replace drops it.
type loadedModel struct {
	model     *bert.Model
	tokenizer *tokenizer.Tokenizer
	source    string
	dim       int
	cache     *Cache
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger enables load logging.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithCacheSize sets the per-model embedding cache capacity.
func WithCacheSize(n int) StoreOption {
	return func(s *Store) { s.cacheSize = n }
}

// NewStore creates an empty store that resolves artifacts through hubClient.
func NewStore(hubClient *hub.Client, opts ...StoreOption) *Store {
	s := &Store{
		hub:       hubClient,
		cacheSize: 1024,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load resolves source, loads the three artifacts, and replaces the current
// model. On any failure the previous state is left untouched and the
// originating error is returned.
func (s *Store) Load(ctx context.Context, source string) error {
	s.logger.Info("loading embedding model", zap.String("source", source))

	artifacts, err := s.hub.Resolve(ctx, source)
	if err != nil {
		return err
	}

	cfg, err := bert.LoadConfig(artifacts.ConfigPath)
	if err != nil {
		return err
	}
	s.logger.Info("model config",
		zap.Int("hidden_size", cfg.HiddenSize),
		zap.Int("num_layers", cfg.NumHiddenLayers),
	)

	weights, err := safetensors.Open(artifacts.WeightsPath)
	if err != nil {
		return err
	}
	model, err := bert.New(weights, cfg)
	if err != nil {
		return err
	}
	tok, err := tokenizer.Load(artifacts.TokenizerPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = &loadedModel{
		model:     model,
		tokenizer: tok,
		source:    source,
		dim:       cfg.HiddenSize,
		cache:     NewCache(s.cacheSize),
	}
	s.mu.Unlock()

	s.logger.Info("embedding model loaded",
		zap.String("source", source),
		zap.Int("dim", cfg.HiddenSize),
	)
	return nil
}

// Embed returns the embedding vector for text. The vector length equals the
// loaded model's hidden size and the output is not normalized.
func (s *Store) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st == nil {
		return nil, ErrNotLoaded
	}
	if cached, ok := st.cache.Get(text); ok {
		return cached, nil
	}

	enc, err := st.tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}
	hidden, err := st.model.Forward(enc.IDs, enc.AttentionMask)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vector := meanPool(hidden, len(enc.IDs), st.dim)
	st.cache.Set(text, vector)
	return vector, nil
}

// meanPool collapses an [L][H] hidden-state matrix to an [H] vector by a
// uniform mean over the sequence axis. The attention mask is deliberately
// not consulted: inputs carry no padding, so every position is real.
func meanPool(hidden []float32, seqLen, dim int) []float32 {
	out := make([]float32, dim)
	for i := 0; i < seqLen; i++ {
		row := hidden[i*dim : (i+1)*dim]
		for d, v := range row {
			out[d] += v
		}
	}
	inv := 1 / float32(seqLen)
	for d := range out {
		out[d] *= inv
	}
	return out
}

// Info describes the store as observed by the service facade.
type Info struct {
	Loaded      bool
	Source      string
	Dim         int
	VocabSize   int
	ContextSize int
}

// Info returns the current state. Before a load it reports the BERT-base
// defaults for vocabulary and context size.
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return Info{
			Dim:         DefaultDim,
			VocabSize:   DefaultVocabSize,
			ContextSize: DefaultContextSize,
		}
	}
	cfg := s.state.model.Config()
	return Info{
		Loaded:      true,
		Source:      s.state.source,
		Dim:         s.state.dim,
		VocabSize:   cfg.VocabSize,
		ContextSize: cfg.MaxPositionEmbeddings,
	}
}

// Dimensions returns the embedding dimension of the loaded model, or the
// default before any load.
func (s *Store) Dimensions() int {
	return s.Info().Dim
}
