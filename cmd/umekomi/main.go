// Package main is the umekomi CLI entry point: the sidecar server plus
// small gRPC client subcommands for talking to a running sidecar.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/umekomi/internal/config"
	"github.com/hyperjump/umekomi/internal/embedding"
	"github.com/hyperjump/umekomi/internal/hub"
	"github.com/hyperjump/umekomi/internal/server"
	"github.com/hyperjump/umekomi/internal/server/pb"
	"github.com/hyperjump/umekomi/pkg/utils"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/umekomi/config.yaml"
	defaultServerAddr = "localhost:50051"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "serve":
		runServe()
	case "init":
		runInit()
	case "embed":
		runEmbed()
	case "generate":
		runGenerate()
	case "info":
		runInfo()
	case "health":
		runHealth()
	case "version", "--version", "-v":
		fmt.Printf("umekomi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadConfig loads config from path. When path is the default, a
// config.yaml in the current directory takes precedence (for development),
// and a missing file falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				return config.Load(fallback)
			}
		}
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	hubClient := hub.New(cfg.Model.CacheDir, hub.WithLogger(logger))
	store := embedding.NewStore(hubClient,
		embedding.WithLogger(logger),
		embedding.WithCacheSize(cfg.Model.CacheSize),
	)
	if cfg.Model.Path != "" {
		if err := store.Load(context.Background(), cfg.Model.Path); err != nil {
			logger.Warn("model preload failed", zap.String("source", cfg.Model.Path), zap.Error(err))
		}
	}

	svc := server.NewService(store, logger)
	srv := server.NewServer(svc, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// dial connects to a running sidecar and returns the connection and client.
func dial(addr string) (*grpc.ClientConn, pb.LLMServiceClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, pb.NewLLMServiceClient(conn), nil
}

// joinArgs joins all positional args with spaces so multi-word texts work
// the same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	serverAddr := fs.String("server", defaultServerAddr, "sidecar address")
	timeout := fs.Duration("timeout", 5*time.Minute, "call timeout (downloads can be slow)")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: umekomi init [flags] <model-path-or-repo-id>")
		os.Exit(1)
	}

	conn, client, err := dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := client.InitModel(ctx, &pb.InitRequest{ModelPath: fs.Arg(0)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "InitModel failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(resp.Message)
	if !resp.Success {
		os.Exit(1)
	}
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	serverAddr := fs.String("server", defaultServerAddr, "sidecar address")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	normalize := fs.Bool("normalize", false, "normalize the vector to unit L2 norm")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: umekomi embed [flags] <text>")
		os.Exit(1)
	}
	text := joinArgs(fs.Args())

	conn, client, err := dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := client.Embed(ctx, &pb.EmbedRequest{Text: text})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embed failed: %v\n", err)
		os.Exit(1)
	}
	vector := resp.Vector
	if *normalize {
		utils.NormalizeL2(vector)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(map[string]interface{}{"dim": resp.Dim, "vector": vector}); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("dim: %d\n", resp.Dim)
		fmt.Print(formatVector(vector, 8))
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// formatVector renders values perLine per row with six decimal places.
func formatVector(vector []float32, perLine int) string {
	var b strings.Builder
	for i, v := range vector {
		fmt.Fprintf(&b, "%.6f", v)
		if (i+1)%perLine == 0 || i == len(vector)-1 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	serverAddr := fs.String("server", defaultServerAddr, "sidecar address")
	timeout := fs.Duration("timeout", 2*time.Minute, "stream timeout")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: umekomi generate [flags] <prompt>")
		os.Exit(1)
	}
	prompt := joinArgs(fs.Args())

	conn, client, err := dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	stream, err := client.Generate(ctx, &pb.GenerateRequest{Prompt: prompt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate failed: %v\n", err)
		os.Exit(1)
	}
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nStream failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(chunk.Text)
		if chunk.Done {
			fmt.Printf("\n[%d values]\n", chunk.TokensGenerated)
			break
		}
	}
}

func runInfo() {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	serverAddr := fs.String("server", defaultServerAddr, "sidecar address")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	_ = fs.Parse(os.Args[2:])

	conn, client, err := dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := client.ModelInfo(ctx, &pb.ModelInfoRequest{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ModelInfo failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("model:        %s\n", resp.ModelName)
	fmt.Printf("vocab_size:   %d\n", resp.VocabSize)
	fmt.Printf("context_size: %d\n", resp.ContextSize)
	fmt.Printf("backend:      %s\n", resp.Backend)
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	serverAddr := fs.String("server", defaultServerAddr, "sidecar address")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	_ = fs.Parse(os.Args[2:])

	conn, client, err := dial(*serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := client.Health(ctx, &pb.HealthRequest{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("healthy: %t\n%s\n", resp.Healthy, resp.Message)
}

func printUsage() {
	fmt.Println(`umekomi - embedding sidecar

Usage:
  umekomi serve [flags]              Start the gRPC sidecar
  umekomi init [flags] <model>       Load a model (local dir or namespace/name repo id)
  umekomi embed [flags] <text>       Embed a text and print the vector
  umekomi generate [flags] <prompt>  Stream the human-readable embedding rendering
  umekomi info [flags]               Show model info
  umekomi health [flags]             Check sidecar health
  umekomi version                    Show version
  umekomi help                       Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/umekomi/config.yaml)
  --debug            Enable debug logging

Client Flags (init, embed, generate, info, health):
  --server string    Sidecar address (default: localhost:50051)
  --timeout duration Call timeout

Embed Flags:
  --normalize        Normalize the vector to unit L2 norm
  --output string    Output format: text or json (default: text)

Examples:
  umekomi serve --debug
  umekomi init sentence-transformers/all-MiniLM-L6-v2
  umekomi embed "machine learning"
  umekomi embed --normalize --output json "machine learning"
  umekomi generate "hello"
  umekomi info`)
}
