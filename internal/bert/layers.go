package bert

import "github.com/chewxy/math32"

// linear is a dense layer with weights in PyTorch layout: w is [out][in]
// row-major, so forward computes y = x·wᵀ + b.
type linear struct {
	w       []float32
	b       []float32
	in, out int
}

// forward applies the layer to x, an [rows][in] row-major matrix, and
// returns an [rows][out] matrix.
func (l *linear) forward(x []float32, rows int) []float32 {
	y := make([]float32, rows*l.out)
	for r := 0; r < rows; r++ {
		xr := x[r*l.in : (r+1)*l.in]
		yr := y[r*l.out : (r+1)*l.out]
		for o := 0; o < l.out; o++ {
			wr := l.w[o*l.in : (o+1)*l.in]
			sum := l.b[o]
			for i, v := range xr {
				sum += v * wr[i]
			}
			yr[o] = sum
		}
	}
	return y
}

// layerNorm normalizes each row of a matrix to zero mean and unit variance,
// then scales by gamma and shifts by beta.
type layerNorm struct {
	gamma []float32
	beta  []float32
	eps   float32
}

func (n *layerNorm) apply(x []float32, rows, width int) {
	for r := 0; r < rows; r++ {
		row := x[r*width : (r+1)*width]
		var mean float32
		for _, v := range row {
			mean += v
		}
		mean /= float32(width)
		var variance float32
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float32(width)
		inv := 1 / math32.Sqrt(variance+n.eps)
		for i, v := range row {
			row[i] = (v-mean)*inv*n.gamma[i] + n.beta[i]
		}
	}
}

// softmaxInPlace normalizes one row of attention scores.
func softmaxInPlace(x []float32) {
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, v := range x {
		e := math32.Exp(v - max)
		x[i] = e
		sum += e
	}
	for i := range x {
		x[i] /= sum
	}
}

// gelu is the exact (erf-based) Gaussian error linear unit used by BERT.
func gelu(x float32) float32 {
	return 0.5 * x * (1 + math32.Erf(x/math32.Sqrt2))
}

func relu(x float32) float32 {
	if x < 0 {
		return 0
	}
	return x
}
