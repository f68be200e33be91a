package dock

// Hessian is a dense symmetric matrix stored in packed upper-triangular
// form: size n(n+1)/2 instead of n², indexed by mr(i,j) for i<=j. This
// mirrors the BFGS inverse-Hessian approximation's own symmetry rather
// than wasting half the storage on a full n×n array.
type Hessian struct {
	n    int
	data []float64
}

// NewIdentityHessian allocates an n×n Hessian initialized to the
// identity, the standard BFGS starting point for each fresh local
// optimization run.
func NewIdentityHessian(n int) *Hessian {
	h := &Hessian{n: n, data: make([]float64, n*(n+1)/2)}
	for i := 0; i < n; i++ {
		h.data[h.mr(i, i)] = 1
	}
	return h
}

// mr maps (i,j) with i<=j to its packed storage index.
func (h *Hessian) mr(i, j int) int {
	return j + i*(2*h.n-i-1)/2
}

// mp is the symmetric accessor: it normalizes (i,j) before indexing so
// callers never need to know which of i,j is smaller.
func (h *Hessian) mp(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return h.mr(i, j)
}

func (h *Hessian) Get(i, j int) float64 {
	return h.data[h.mp(i, j)]
}

// Add accumulates delta into entry (i,j) (and, implicitly, (j,i)).
func (h *Hessian) Add(i, j int, delta float64) {
	h.data[h.mp(i, j)] += delta
}

// MulVec computes H·v.
func (h *Hessian) MulVec(v []float64, out []float64) {
	for i := 0; i < h.n; i++ {
		sum := 0.0
		for j := 0; j < h.n; j++ {
			sum += h.Get(i, j) * v[j]
		}
		out[i] = sum
	}
}
