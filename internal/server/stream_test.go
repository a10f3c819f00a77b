package server

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestRenderHeader(t *testing.T) {
	header := renderHeader("hello", []float32{0.5, -0.25, 0})
	lines := strings.Split(header, "\n")
	if lines[0] != "Embedding generated for: 'hello'" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "Dim: 3 | Non-zero: 2 | Range: [0.0000, 0.5000]" {
		t.Errorf("second line = %q", lines[1])
	}
	if lines[2] != "" || lines[3] != "Vector (hex):" {
		t.Errorf("header tail = %q", header)
	}
	if !strings.HasSuffix(header, "Vector (hex):\n") {
		t.Errorf("header should end with the hex banner, got %q", header)
	}
}

func TestRenderHeader_rangeUsesAbsoluteValues(t *testing.T) {
	header := renderHeader("x", []float32{-0.5, -0.125})
	if !strings.Contains(header, "Range: [0.1250, 0.5000]") {
		t.Errorf("range should be over absolute values, got %q", header)
	}
}

func TestRenderHeader_emptyVector(t *testing.T) {
	header := renderHeader("x", nil)
	if !strings.Contains(header, "Dim: 0 | Non-zero: 0 | Range: [0.0000, 0.0000]") {
		t.Errorf("empty vector header = %q", header)
	}
}

func TestRenderStream(t *testing.T) {
	vector := make([]float32, 10)
	for i := range vector {
		vector[i] = float32(i) * 0.1
	}
	chunks := renderStream("hi", vector)

	header := renderHeader("hi", vector)
	wantChunks := len([]rune(header)) + len(vector) + 1
	if len(chunks) != wantChunks {
		t.Fatalf("chunk count = %d, want %d", len(chunks), wantChunks)
	}

	// Header chunks: one rune each, zero counter, not done.
	var rebuilt strings.Builder
	headerRunes := len([]rune(header))
	for i := 0; i < headerRunes; i++ {
		c := chunks[i]
		if len([]rune(c.Text)) != 1 {
			t.Fatalf("header chunk %d carries %q", i, c.Text)
		}
		if c.Done || c.TokensGenerated != 0 {
			t.Fatalf("header chunk %d done=%v tokens=%d", i, c.Done, c.TokensGenerated)
		}
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != header {
		t.Errorf("header chunks rebuild to %q", rebuilt.String())
	}

	// Vector chunks: hex bit pattern plus separator, counter equals index.
	for i := 0; i < len(vector); i++ {
		c := chunks[headerRunes+i]
		if c.TokensGenerated != int32(i) {
			t.Errorf("vector chunk %d counter = %d", i, c.TokensGenerated)
		}
		sep := " "
		if (i+1)%hexPerLine == 0 {
			sep = "\n"
		}
		if !strings.HasSuffix(c.Text, sep) {
			t.Errorf("vector chunk %d = %q, want separator %q", i, c.Text, sep)
		}
		hexPart := strings.TrimSuffix(c.Text, sep)
		if len(hexPart) != 8 {
			t.Fatalf("vector chunk %d hex = %q", i, hexPart)
		}
		bits, err := strconv.ParseUint(hexPart, 16, 32)
		if err != nil {
			t.Fatalf("vector chunk %d hex parse: %v", i, err)
		}
		if got := math.Float32frombits(uint32(bits)); got != vector[i] {
			t.Errorf("vector chunk %d decodes to %v, want %v", i, got, vector[i])
		}
	}

	final := chunks[len(chunks)-1]
	if !final.Done || final.TokensGenerated != int32(len(vector)) || final.Text != "" {
		t.Errorf("final chunk = %+v", final)
	}
}
