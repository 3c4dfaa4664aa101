package voxelgi

// LCG is the linear congruential generator the grid uses for randomized
// sampling. It is owned by a Grid, so diffusion never disturbs any other
// random stream.
type LCG struct {
	state uint64
}

const (
	lcgMultiplier = 16807
	lcgModulus    = 2147483647
	lcgIncrement  = 13
)

// NewLCG returns a generator seeded with seed.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: uint64(seed)}
}

// Seed resets the state.
func (r *LCG) Seed(seed uint32) { r.state = uint64(seed) }

// Next advances the generator and returns a value in [0, 2³¹-1).
func (r *LCG) Next() uint32 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return uint32(r.state)
}

// Intn returns a value in [0, n). n must be positive.
func (r *LCG) Intn(n int) int {
	return int(r.Next() % uint32(n))
}

// Perm fills order with a permutation of [0, len(order)) using a
// Fisher-Yates shuffle.
func (r *LCG) Perm(order []int32) {
	for i := range order {
		order[i] = int32(i)
	}
	for i := len(order) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}
