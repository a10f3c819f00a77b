package server

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"
	"github.com/hyperjump/umekomi/internal/server/pb"
)

// hexPerLine is how many hex-encoded values share one line of the rendering.
const hexPerLine = 8

// renderStream builds the full chunk sequence for a Generate stream: the
// header character by character with a zero counter, one chunk per vector
// entry carrying its index, and a terminal done chunk whose counter is the
// vector length.
func renderStream(prompt string, vector []float32) []*pb.GenerateResponse {
	header := renderHeader(prompt, vector)
	chunks := make([]*pb.GenerateResponse, 0, len(header)+len(vector)+1)
	for _, r := range header {
		chunks = append(chunks, &pb.GenerateResponse{Text: string(r)})
	}
	for i, v := range vector {
		sep := " "
		if (i+1)%hexPerLine == 0 {
			sep = "\n"
		}
		chunks = append(chunks, &pb.GenerateResponse{
			Text:            fmt.Sprintf("%08x%s", math.Float32bits(v), sep),
			TokensGenerated: int32(i),
		})
	}
	chunks = append(chunks, &pb.GenerateResponse{
		Done:            true,
		TokensGenerated: int32(len(vector)),
	})
	return chunks
}

// renderHeader formats the stream header: the prompt, the dimension, the
// count of entries with absolute value above 1e-6, and the min/max of
// absolute values to four decimal places.
func renderHeader(prompt string, vector []float32) string {
	var nonZero int
	minAbs := float32(math.Inf(1))
	maxAbs := float32(0)
	for _, v := range vector {
		a := math32.Abs(v)
		if a > 1e-6 {
			nonZero++
		}
		if a < minAbs {
			minAbs = a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	if len(vector) == 0 {
		minAbs = 0
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Embedding generated for: '%s'\n", prompt)
	fmt.Fprintf(&b, "Dim: %d | Non-zero: %d | Range: [%.4f, %.4f]\n\n", len(vector), nonZero, minAbs, maxAbs)
	b.WriteString("Vector (hex):\n")
	return b.String()
}
