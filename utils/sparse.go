package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK wraps a dictionary of keys float matrix, the export format of the
// integer boundary operators
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }
func (m DOK) Name() string        { return m.name }
func (m DOK) IsReadOnly() bool    { return m.readOnly }

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// ToDense copies the matrix into a gonum dense matrix
func (m DOK) ToDense() *mat.Dense {
	return m.M.ToDense()
}

// CSR is the compressed row form used for products of exported operators
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// Mul returns the sparse product A*B
func (m CSR) Mul(b CSR) CSR {
	_, nc := m.Dims()
	nr, _ := b.Dims()
	if nc != nr {
		panic(fmt.Errorf("dimension mismatch multiplying %q by %q", m.name, b.name))
	}
	p := &sparse.CSR{}
	p.Mul(m.M, b.M)
	return CSR{
		M:    p,
		name: m.name + "*" + b.name,
	}
}

// IsZero reports whether every stored entry is zero
func (m CSR) IsZero() bool {
	for _, v := range m.Data() {
		if v != 0 {
			return false
		}
	}
	return true
}
