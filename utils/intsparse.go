package utils

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrIntegerOverflow is the panic value raised when exact int64 arithmetic
// would wrap around
var ErrIntegerOverflow = errors.New("utils: int64 overflow")

// AddInt64 returns a+b, panicking with ErrIntegerOverflow on overflow
func AddInt64(a, b int64) int64 {
	c := a + b
	if (c > a) != (b > 0) {
		panic(ErrIntegerOverflow)
	}
	return c
}

// MulInt64 returns a*b, panicking with ErrIntegerOverflow on overflow
func MulInt64(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		panic(ErrIntegerOverflow)
	}
	return c
}

// AbsInt64 returns |a|, panicking with ErrIntegerOverflow for MinInt64
func AbsInt64(a int64) int64 {
	if a < 0 {
		if a == math.MinInt64 {
			panic(ErrIntegerOverflow)
		}
		return -a
	}
	return a
}

// IntSparse is an exact sparse integer matrix. Entries are stored twice, by
// row and by column, so that the elementary row and column operations of
// the Smith normal form both run in the size of the touched line.
type IntSparse struct {
	nr, nc int
	rows   []map[int]int64 // rows[i][j] = A(i,j)
	cols   []map[int]int64 // cols[j][i] = A(i,j)
}

func NewIntSparse(nr, nc int) *IntSparse {
	if nr < 0 || nc < 0 {
		panic(fmt.Errorf("invalid dimensions %d x %d", nr, nc))
	}
	m := &IntSparse{
		nr:   nr,
		nc:   nc,
		rows: make([]map[int]int64, nr),
		cols: make([]map[int]int64, nc),
	}
	for i := range m.rows {
		m.rows[i] = make(map[int]int64)
	}
	for j := range m.cols {
		m.cols[j] = make(map[int]int64)
	}
	return m
}

func IdentityIntSparse(n int) *IntSparse {
	m := NewIntSparse(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func (m *IntSparse) Dims() (r, c int) { return m.nr, m.nc }

func (m *IntSparse) At(i, j int) int64 {
	m.checkBounds(i, j)
	return m.rows[i][j]
}

// Set assigns A(i,j) = v, a zero removes the entry
func (m *IntSparse) Set(i, j int, v int64) {
	m.checkBounds(i, j)
	if v == 0 {
		delete(m.rows[i], j)
		delete(m.cols[j], i)
		return
	}
	m.rows[i][j] = v
	m.cols[j][i] = v
}

// Add performs A(i,j) += v
func (m *IntSparse) Add(i, j int, v int64) {
	if v == 0 {
		return
	}
	m.Set(i, j, AddInt64(m.At(i, j), v))
}

func (m *IntSparse) NNZ() (nnz int) {
	for _, r := range m.rows {
		nnz += len(r)
	}
	return
}

func (m *IntSparse) IsZero() bool {
	return m.NNZ() == 0
}

func (m *IntSparse) Clone() *IntSparse {
	c := NewIntSparse(m.nr, m.nc)
	for i, r := range m.rows {
		for j, v := range r {
			c.rows[i][j] = v
			c.cols[j][i] = v
		}
	}
	return c
}

func (m *IntSparse) Transpose() *IntSparse {
	t := NewIntSparse(m.nc, m.nr)
	for i, r := range m.rows {
		for j, v := range r {
			t.rows[j][i] = v
			t.cols[i][j] = v
		}
	}
	return t
}

// Mul returns the product A*B with checked arithmetic
func (m *IntSparse) Mul(b *IntSparse) *IntSparse {
	if m.nc != b.nr {
		panic(fmt.Errorf("dimension mismatch: %d x %d times %d x %d", m.nr, m.nc, b.nr, b.nc))
	}
	p := NewIntSparse(m.nr, b.nc)
	for i, r := range m.rows {
		for k, a := range r {
			for j, bv := range b.rows[k] {
				p.Add(i, j, MulInt64(a, bv))
			}
		}
	}
	return p
}

// Row returns a copy of row i as a column index -> value map
func (m *IntSparse) Row(i int) map[int]int64 {
	m.checkRow(i)
	return copyLine(m.rows[i])
}

// Column returns a copy of column j as a row index -> value map
func (m *IntSparse) Column(j int) map[int]int64 {
	m.checkCol(j)
	return copyLine(m.cols[j])
}

// ColumnRange returns the sub matrix of columns [from, to)
func (m *IntSparse) ColumnRange(from, to int) *IntSparse {
	if from < 0 || to > m.nc || from > to {
		panic(fmt.Errorf("invalid column range [%d, %d) of %d columns", from, to, m.nc))
	}
	s := NewIntSparse(m.nr, to-from)
	for j := from; j < to; j++ {
		for i, v := range m.cols[j] {
			s.Set(i, j-from, v)
		}
	}
	return s
}

func (m *IntSparse) SwapRows(i, k int) {
	if i == k {
		return
	}
	m.checkRow(i)
	m.checkRow(k)
	for _, j := range unionKeys(m.rows[i], m.rows[k]) {
		vi, vk := m.cols[j][i], m.cols[j][k]
		delete(m.cols[j], i)
		delete(m.cols[j], k)
		if vk != 0 {
			m.cols[j][i] = vk
		}
		if vi != 0 {
			m.cols[j][k] = vi
		}
	}
	m.rows[i], m.rows[k] = m.rows[k], m.rows[i]
}

func (m *IntSparse) SwapCols(j, k int) {
	if j == k {
		return
	}
	m.checkCol(j)
	m.checkCol(k)
	for _, i := range unionKeys(m.cols[j], m.cols[k]) {
		vj, vk := m.rows[i][j], m.rows[i][k]
		delete(m.rows[i], j)
		delete(m.rows[i], k)
		if vk != 0 {
			m.rows[i][j] = vk
		}
		if vj != 0 {
			m.rows[i][k] = vj
		}
	}
	m.cols[j], m.cols[k] = m.cols[k], m.cols[j]
}

// AddRowMultiple performs row(dst) += q * row(src)
func (m *IntSparse) AddRowMultiple(dst, src int, q int64) {
	if dst == src {
		panic(fmt.Errorf("row %d added to itself", dst))
	}
	if q == 0 {
		return
	}
	for _, j := range sortedKeys(m.rows[src]) {
		m.Add(dst, j, MulInt64(q, m.rows[src][j]))
	}
}

// AddColMultiple performs col(dst) += q * col(src)
func (m *IntSparse) AddColMultiple(dst, src int, q int64) {
	if dst == src {
		panic(fmt.Errorf("column %d added to itself", dst))
	}
	if q == 0 {
		return
	}
	for _, i := range sortedKeys(m.cols[src]) {
		m.Add(i, dst, MulInt64(q, m.cols[src][i]))
	}
}

func (m *IntSparse) NegateRow(i int) {
	for j, v := range m.rows[i] {
		m.rows[i][j] = -v
		m.cols[j][i] = -v
	}
}

func (m *IntSparse) NegateCol(j int) {
	for i, v := range m.cols[j] {
		m.cols[j][i] = -v
		m.rows[i][j] = -v
	}
}

// DoNonZero calls fn for every non zero entry in row major order
func (m *IntSparse) DoNonZero(fn func(i, j int, v int64)) {
	for i, r := range m.rows {
		for _, j := range sortedKeys(r) {
			fn(i, j, r[j])
		}
	}
}

// Equals reports entrywise equality
func (m *IntSparse) Equals(b *IntSparse) bool {
	if m.nr != b.nr || m.nc != b.nc {
		return false
	}
	for i, r := range m.rows {
		if len(r) != len(b.rows[i]) {
			return false
		}
		for j, v := range r {
			if b.rows[i][j] != v {
				return false
			}
		}
	}
	return true
}

// ToDOK exports the matrix as a float DOK, named for read only use
func (m *IntSparse) ToDOK(name string) DOK {
	d := NewDOK(m.nr, m.nc)
	m.DoNonZero(func(i, j int, v int64) {
		d.Set(i, j, float64(v))
	})
	d.SetReadOnly(name)
	return d
}

func (m *IntSparse) String() string {
	return fmt.Sprintf("IntSparse %d x %d, %d non zeros", m.nr, m.nc, m.NNZ())
}

func (m *IntSparse) checkBounds(i, j int) {
	m.checkRow(i)
	m.checkCol(j)
}

func (m *IntSparse) checkRow(i int) {
	if i < 0 || i >= m.nr {
		panic(fmt.Errorf("row %d out of range for %d x %d matrix", i, m.nr, m.nc))
	}
}

func (m *IntSparse) checkCol(j int) {
	if j < 0 || j >= m.nc {
		panic(fmt.Errorf("column %d out of range for %d x %d matrix", j, m.nr, m.nc))
	}
}

func copyLine(line map[int]int64) map[int]int64 {
	c := make(map[int]int64, len(line))
	for k, v := range line {
		c[k] = v
	}
	return c
}

func sortedKeys(line map[int]int64) []int {
	keys := make([]int, 0, len(line))
	for k := range line {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func unionKeys(a, b map[int]int64) []int {
	keys := make([]int, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}
