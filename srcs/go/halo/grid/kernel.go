package grid

// RowKernel computes one output row from the row and its vertical neighbours.
// Implementations must only write out.
type RowKernel func(above, row, below, out []float64)

// FivePoint sets every cell to the sum of itself and its four neighbours.
// Columns wrap around.
func FivePoint(above, row, below, out []float64) {
	n := len(row)
	for j := range row {
		l, r := (j+n-1)%n, (j+1)%n
		out[j] = row[j] + above[j] + below[j] + row[l] + row[r]
	}
}

// Diffusion is an explicit heat-equation step with coefficient alpha.
// Columns wrap around, so the grid total is preserved.
func Diffusion(alpha float64) RowKernel {
	return func(above, row, below, out []float64) {
		n := len(row)
		for j := range row {
			l, r := (j+n-1)%n, (j+1)%n
			lap := above[j] + below[j] + row[l] + row[r] - 4*row[j]
			out[j] = row[j] + alpha*lap
		}
	}
}
