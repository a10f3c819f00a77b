package server

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/hyperjump/umekomi/internal/embedding"
	"github.com/hyperjump/umekomi/internal/hub"
	"github.com/hyperjump/umekomi/internal/modeltest"
	"github.com/hyperjump/umekomi/internal/server/pb"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// startTestServer serves the full stack over an in-memory listener and
// returns a connected client.
func startTestServer(t *testing.T) (pb.LLMServiceClient, string) {
	t.Helper()

	checkpoint, err := modeltest.CheckpointDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := embedding.NewStore(hub.New(t.TempDir()))
	svc := NewService(store, zap.NewNop(), WithChunkDelay(0))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterLLMServiceServer(srv, svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	return pb.NewLLMServiceClient(conn), checkpoint
}

func TestServer_lifecycle(t *testing.T) {
	client, checkpoint := startTestServer(t)
	ctx := context.Background()

	// Before a model is loaded.
	health, err := client.Health(ctx, &pb.HealthRequest{})
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !health.Healthy || health.Message != "Embedding service is healthy (no model)" {
		t.Errorf("health = %+v", health)
	}

	info, err := client.ModelInfo(ctx, &pb.ModelInfoRequest{})
	if err != nil {
		t.Fatalf("ModelInfo: %v", err)
	}
	if info.ModelName != "Not loaded" || info.VocabSize != 30522 || info.ContextSize != 512 {
		t.Errorf("info = %+v", info)
	}

	_, err = client.Embed(ctx, &pb.EmbedRequest{Text: "hello"})
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("Embed before init = %v, want FailedPrecondition", err)
	}

	// Load the model.
	initResp, err := client.InitModel(ctx, &pb.InitRequest{ModelPath: checkpoint})
	if err != nil {
		t.Fatalf("InitModel: %v", err)
	}
	if !initResp.Success {
		t.Fatalf("InitModel failed: %s", initResp.Message)
	}

	// Embed now works and reports the model dimension.
	embedResp, err := client.Embed(ctx, &pb.EmbedRequest{Text: "hello world"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if embedResp.Dim != modeltest.HiddenSize || len(embedResp.Vector) != modeltest.HiddenSize {
		t.Errorf("dim = %d, vector length = %d", embedResp.Dim, len(embedResp.Vector))
	}

	info, err = client.ModelInfo(ctx, &pb.ModelInfoRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(info.ModelName, checkpoint) || !strings.Contains(info.ModelName, "native BERT") {
		t.Errorf("model name = %q", info.ModelName)
	}
	if info.VocabSize != modeltest.VocabSize || info.ContextSize != modeltest.MaxPositions {
		t.Errorf("info = %+v", info)
	}

	health, err = client.Health(ctx, &pb.HealthRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if health.Message != "Embedding service is healthy (model loaded)" {
		t.Errorf("health message = %q", health.Message)
	}
}

func TestServer_initModelBadSource(t *testing.T) {
	client, _ := startTestServer(t)

	resp, err := client.InitModel(context.Background(), &pb.InitRequest{ModelPath: "./no-such-dir"})
	if err != nil {
		t.Fatalf("InitModel transport error: %v", err)
	}
	if resp.Success {
		t.Error("Success should be false for a bad source")
	}
	if !strings.Contains(resp.Message, "not found in ./no-such-dir") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestServer_generateStream(t *testing.T) {
	client, checkpoint := startTestServer(t)
	ctx := context.Background()

	if _, err := client.InitModel(ctx, &pb.InitRequest{ModelPath: checkpoint}); err != nil {
		t.Fatal(err)
	}

	stream, err := client.Generate(ctx, &pb.GenerateRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var text strings.Builder
	var chunks int
	var last *pb.GenerateResponse
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		text.WriteString(chunk.Text)
		chunks++
		last = chunk
	}

	if last == nil || !last.Done {
		t.Fatal("stream should end with a done chunk")
	}
	if last.TokensGenerated != modeltest.HiddenSize {
		t.Errorf("final counter = %d, want %d", last.TokensGenerated, modeltest.HiddenSize)
	}
	full := text.String()
	if !strings.HasPrefix(full, "Embedding generated for: 'hello'\n") {
		t.Errorf("unexpected stream text prefix: %q", full)
	}
	if !strings.Contains(full, "Vector (hex):\n") {
		t.Error("stream text missing hex banner")
	}
}

func TestServer_generateNotLoaded(t *testing.T) {
	client, _ := startTestServer(t)

	stream, err := client.Generate(context.Background(), &pb.GenerateRequest{Prompt: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = stream.Recv()
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("Recv = %v, want FailedPrecondition", err)
	}
}
