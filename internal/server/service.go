package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/umekomi/internal/embedding"
	"github.com/hyperjump/umekomi/internal/server/pb"
	"github.com/hyperjump/umekomi/pkg/utils"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Backend identifies the inference library family in ModelInfo responses.
const Backend = "native"

// streamBuffer bounds the Generate chunk channel; a slow consumer pauses
// emission without dropping chunks.
const streamBuffer = 4

// defaultChunkDelay paces Generate chunks for human-readable consumption.
const defaultChunkDelay = time.Millisecond

// Engine is the part of the model store the service facade uses.
type Engine interface {
	Load(ctx context.Context, source string) error
	Embed(ctx context.Context, text string) ([]float32, error)
	Info() embedding.Info
}

// Service implements the sidecar.LLMService RPCs over an Engine.
type Service struct {
	engine     Engine
	logger     *zap.Logger
	chunkDelay time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithChunkDelay overrides the inter-chunk pacing delay (used by tests).
func WithChunkDelay(d time.Duration) ServiceOption {
	return func(s *Service) { s.chunkDelay = d }
}

// NewService creates the service facade over engine.
func NewService(engine Engine, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		engine:     engine,
		logger:     logger,
		chunkDelay: defaultChunkDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitModel loads (or replaces) the model. Load failures are reported in
// the response body so the client can tell configuration errors from
// transport errors; the RPC itself always succeeds.
func (s *Service) InitModel(ctx context.Context, req *pb.InitRequest) (*pb.InitResponse, error) {
	if err := s.engine.Load(ctx, req.ModelPath); err != nil {
		s.logger.Warn("model load failed", zap.String("source", req.ModelPath), zap.Error(err))
		return &pb.InitResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to load model: %v", err),
		}, nil
	}
	return &pb.InitResponse{
		Success: true,
		Message: fmt.Sprintf("Embedding model loaded from %s", req.ModelPath),
	}, nil
}

// Embed returns the embedding vector for the request text.
func (s *Service) Embed(ctx context.Context, req *pb.EmbedRequest) (*pb.EmbedResponse, error) {
	s.logger.Debug("embed request", zap.String("text", utils.Truncate(req.Text, 80)))
	vector, err := s.engine.Embed(ctx, req.Text)
	if err != nil {
		return nil, embedStatus(err)
	}
	return &pb.EmbedResponse{
		Vector: vector,
		Dim:    int32(len(vector)),
	}, nil
}

// Generate computes the embedding for the prompt and streams its
// human-readable rendering: a header, then the vector as hex-encoded
// float bit patterns, then a terminal done chunk.
func (s *Service) Generate(req *pb.GenerateRequest, stream pb.LLMService_GenerateServer) error {
	s.logger.Debug("generate request", zap.String("prompt", utils.Truncate(req.Prompt, 80)))
	ctx := stream.Context()
	vector, err := s.engine.Embed(ctx, req.Prompt)
	if err != nil {
		return embedStatus(err)
	}

	ch := make(chan *pb.GenerateResponse, streamBuffer)
	go func() {
		defer close(ch)
		for _, chunk := range renderStream(req.Prompt, vector) {
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(s.chunkDelay):
			case <-ctx.Done():
				return
			}
		}
	}()

	for chunk := range ch {
		if err := stream.Send(chunk); err != nil {
			// Client went away; returning cancels the stream context and
			// unblocks the producer.
			return nil
		}
	}
	return nil
}

// ModelInfo describes the loaded model. Vocabulary and context size come
// from the loaded configuration, with BERT-base defaults before any load.
func (s *Service) ModelInfo(ctx context.Context, _ *pb.ModelInfoRequest) (*pb.ModelInfoResponse, error) {
	info := s.engine.Info()
	name := "Not loaded"
	if info.Loaded {
		name = fmt.Sprintf("%s (%s BERT)", info.Source, Backend)
	}
	return &pb.ModelInfoResponse{
		ModelName:   name,
		VocabSize:   int32(info.VocabSize),
		ContextSize: int32(info.ContextSize),
		Backend:     Backend,
	}, nil
}

// Health always reports healthy while the process answers.
func (s *Service) Health(ctx context.Context, _ *pb.HealthRequest) (*pb.HealthResponse, error) {
	msg := "Embedding service is healthy (no model)"
	if s.engine.Info().Loaded {
		msg = "Embedding service is healthy (model loaded)"
	}
	return &pb.HealthResponse{Healthy: true, Message: msg}, nil
}

// embedStatus maps pipeline errors to transport status codes: a missing
// model is a precondition failure, everything else is internal.
func embedStatus(err error) error {
	if errors.Is(err, embedding.ErrNotLoaded) {
		return status.Error(codes.FailedPrecondition, "Model not initialized")
	}
	return status.Errorf(codes.Internal, "Embedding error: %v", err)
}
