package bert

import (
	"fmt"

	"github.com/chewxy/math32"
)

// maskedBias is added to attention scores at padded positions.
const maskedBias = float32(-1e4)

// Params supplies named weight tensors, typically a safetensors file.
type Params interface {
	Float32(name string) ([]float32, []int, error)
	Has(name string) bool
}

type encoderLayer struct {
	query        linear
	key          linear
	value        linear
	attOutput    linear
	attNorm      layerNorm
	intermediate linear
	output       linear
	outNorm      layerNorm
}

// Model is a loaded BERT encoder. It is immutable after New and safe for
// concurrent Forward calls.
type Model struct {
	cfg     Config
	wordEmb []float32
	posEmb  []float32
	typeEmb []float32
	embNorm layerNorm
	layers  []encoderLayer
	act     func(float32) float32
}

// New builds the encoder from params and cfg. Tensor names follow the
// HuggingFace BertModel layout; a "bert." prefix (used by checkpoints
// exported from task heads) is accepted transparently.
func New(params Params, cfg *Config) (*Model, error) {
	r := &reader{params: params}
	if r.params.Has("bert.embeddings.word_embeddings.weight") {
		r.prefix = "bert."
	}

	m := &Model{cfg: *cfg}
	m.wordEmb = r.tensor("embeddings.word_embeddings.weight", cfg.VocabSize*cfg.HiddenSize)
	m.posEmb = r.tensor("embeddings.position_embeddings.weight", cfg.MaxPositionEmbeddings*cfg.HiddenSize)
	m.typeEmb = r.tensor("embeddings.token_type_embeddings.weight", cfg.TypeVocabSize*cfg.HiddenSize)
	m.embNorm = r.norm("embeddings.LayerNorm", cfg)

	m.layers = make([]encoderLayer, cfg.NumHiddenLayers)
	for i := range m.layers {
		p := fmt.Sprintf("encoder.layer.%d.", i)
		m.layers[i] = encoderLayer{
			query:        r.linear(p+"attention.self.query", cfg.HiddenSize, cfg.HiddenSize),
			key:          r.linear(p+"attention.self.key", cfg.HiddenSize, cfg.HiddenSize),
			value:        r.linear(p+"attention.self.value", cfg.HiddenSize, cfg.HiddenSize),
			attOutput:    r.linear(p+"attention.output.dense", cfg.HiddenSize, cfg.HiddenSize),
			attNorm:      r.norm(p+"attention.output.LayerNorm", cfg),
			intermediate: r.linear(p+"intermediate.dense", cfg.HiddenSize, cfg.IntermediateSize),
			output:       r.linear(p+"output.dense", cfg.IntermediateSize, cfg.HiddenSize),
			outNorm:      r.norm(p+"output.LayerNorm", cfg),
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to load model weights: %w", r.err)
	}

	switch cfg.HiddenAct {
	case "relu":
		m.act = relu
	default:
		m.act = gelu
	}
	return m, nil
}

// Config returns the configuration the model was built from.
func (m *Model) Config() Config {
	return m.cfg
}

// Hidden returns the hidden size H of the encoder output.
func (m *Model) Hidden() int {
	return m.cfg.HiddenSize
}

// Forward runs the encoder over one sequence of token ids with its
// attention mask and returns the hidden states as an [L][H] row-major
// matrix. Token type ids are all zero.
func (m *Model) Forward(ids []int64, mask []uint8) ([]float32, error) {
	L := len(ids)
	H := m.cfg.HiddenSize
	if L == 0 {
		return nil, fmt.Errorf("empty token sequence")
	}
	if len(mask) != L {
		return nil, fmt.Errorf("attention mask length %d does not match sequence length %d", len(mask), L)
	}
	if L > m.cfg.MaxPositionEmbeddings {
		return nil, fmt.Errorf("sequence length %d exceeds maximum position embeddings %d",
			L, m.cfg.MaxPositionEmbeddings)
	}

	hidden := make([]float32, L*H)
	for i, id := range ids {
		if id < 0 || int(id) >= m.cfg.VocabSize {
			return nil, fmt.Errorf("token id %d outside vocabulary of size %d", id, m.cfg.VocabSize)
		}
		row := hidden[i*H : (i+1)*H]
		copy(row, m.wordEmb[int(id)*H:(int(id)+1)*H])
		for d, v := range m.posEmb[i*H : (i+1)*H] {
			row[d] += v
		}
		for d, v := range m.typeEmb[:H] {
			row[d] += v
		}
	}
	m.embNorm.apply(hidden, L, H)

	bias := make([]float32, L)
	for j, v := range mask {
		if v == 0 {
			bias[j] = maskedBias
		}
	}

	for i := range m.layers {
		hidden = m.layers[i].forward(hidden, L, H, m.cfg.NumAttentionHeads, bias, m.act)
	}
	return hidden, nil
}

func (ly *encoderLayer) forward(hidden []float32, L, H, heads int, bias []float32, act func(float32) float32) []float32 {
	context := ly.selfAttention(hidden, L, H, heads, bias)
	attOut := ly.attOutput.forward(context, L)
	for i, v := range hidden {
		attOut[i] += v
	}
	ly.attNorm.apply(attOut, L, H)

	inter := ly.intermediate.forward(attOut, L)
	for i, v := range inter {
		inter[i] = act(v)
	}
	out := ly.output.forward(inter, L)
	for i, v := range attOut {
		out[i] += v
	}
	ly.outNorm.apply(out, L, H)
	return out
}

func (ly *encoderLayer) selfAttention(hidden []float32, L, H, heads int, bias []float32) []float32 {
	headDim := H / heads
	scale := 1 / math32.Sqrt(float32(headDim))
	q := ly.query.forward(hidden, L)
	k := ly.key.forward(hidden, L)
	v := ly.value.forward(hidden, L)

	context := make([]float32, L*H)
	scores := make([]float32, L)
	for h := 0; h < heads; h++ {
		off := h * headDim
		for i := 0; i < L; i++ {
			qi := q[i*H+off : i*H+off+headDim]
			for j := 0; j < L; j++ {
				kj := k[j*H+off : j*H+off+headDim]
				var dot float32
				for d, qv := range qi {
					dot += qv * kj[d]
				}
				scores[j] = dot*scale + bias[j]
			}
			softmaxInPlace(scores)
			dst := context[i*H+off : i*H+off+headDim]
			for j := 0; j < L; j++ {
				w := scores[j]
				vj := v[j*H+off : j*H+off+headDim]
				for d, vv := range vj {
					dst[d] += w * vv
				}
			}
		}
	}
	return context
}

// reader accumulates the first tensor-loading error so New can report it
// once instead of threading an error through every lookup.
type reader struct {
	params Params
	prefix string
	err    error
}

func (r *reader) tensor(name string, want int) []float32 {
	if r.err != nil {
		return nil
	}
	data, _, err := r.params.Float32(r.prefix + name)
	if err != nil {
		r.err = err
		return nil
	}
	if len(data) != want {
		r.err = fmt.Errorf("tensor %q has %d elements, want %d", name, len(data), want)
		return nil
	}
	return data
}

func (r *reader) linear(name string, in, out int) linear {
	return linear{
		w:   r.tensor(name+".weight", out*in),
		b:   r.tensor(name+".bias", out),
		in:  in,
		out: out,
	}
}

func (r *reader) norm(name string, cfg *Config) layerNorm {
	gammaName, betaName := name+".weight", name+".bias"
	// Older BERT exports name the affine parameters gamma/beta.
	if !r.params.Has(r.prefix+gammaName) && r.params.Has(r.prefix+name+".gamma") {
		gammaName, betaName = name+".gamma", name+".beta"
	}
	return layerNorm{
		gamma: r.tensor(gammaName, cfg.HiddenSize),
		beta:  r.tensor(betaName, cfg.HiddenSize),
		eps:   float32(cfg.LayerNormEps),
	}
}
