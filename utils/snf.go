package utils

// SNFResult holds the Smith normal form D = U*A*W of an integer matrix A,
// with U and W unimodular
type SNFResult struct {
	// Diag holds the non zero invariant factors, positive, each dividing the
	// next
	Diag []int64
	Rank int
	// RowInverse is U^-1, nil unless row tracking was requested. Its columns
	// are a basis of the row space of A adapted to the image: column i times
	// Diag[i] is in the image for i < Rank.
	RowInverse *IntSparse
	// ColTransform is W, nil unless column tracking was requested. Columns
	// Rank and above span the kernel of A.
	ColTransform *IntSparse
}

// Torsion returns the invariant factors greater than one
func (r *SNFResult) Torsion() (t []int64) {
	for _, d := range r.Diag {
		if d > 1 {
			t = append(t, d)
		}
	}
	return
}

// SmithNormalForm reduces a copy of A with elementary integer row and column
// operations. The pivot at each step is the entry of smallest magnitude in
// the remaining block, ties broken by (column, row), so the result only
// depends on A. Overflow panics with ErrIntegerOverflow.
func SmithNormalForm(A *IntSparse, trackRows, trackCols bool) *SNFResult {
	var (
		a      = A.Clone()
		nr, nc = a.Dims()
		res    = &SNFResult{}
	)
	if trackRows {
		res.RowInverse = IdentityIntSparse(nr)
	}
	if trackCols {
		res.ColTransform = IdentityIntSparse(nc)
	}
	s := &snfState{a: a, uinv: res.RowInverse, w: res.ColTransform}

	for t := 0; t < nr && t < nc; t++ {
		pi, pj, ok := s.findPivot(t)
		if !ok {
			break
		}
		s.swapRows(t, pi)
		s.swapCols(t, pj)
		s.reduceCross(t)
		if a.At(t, t) < 0 {
			s.negateRow(t)
		}
		res.Diag = append(res.Diag, a.At(t, t))
	}
	res.Rank = len(res.Diag)
	return res
}

// snfState applies every row and column operation to the working matrix
// and to the tracked transforms
type snfState struct {
	a    *IntSparse
	uinv *IntSparse
	w    *IntSparse
}

func (s *snfState) findPivot(t int) (pi, pj int, ok bool) {
	var best int64
	_, nc := s.a.Dims()
	for j := t; j < nc; j++ {
		for i, v := range s.a.cols[j] {
			if i < t {
				continue
			}
			av := AbsInt64(v)
			if !ok || av < best || (av == best && (j < pj || (j == pj && i < pi))) {
				best, pi, pj, ok = av, i, j, true
			}
		}
	}
	return
}

// reduceCross clears row t and column t outside the pivot and enforces that
// the pivot divides the rest of the remaining block
func (s *snfState) reduceCross(t int) {
	for {
		if s.clearColumn(t) {
			continue
		}
		if s.clearRow(t) {
			continue
		}
		if i, ok := s.findNonDivisible(t); ok {
			// Bring the offending row in, the next pass leaves a smaller pivot
			s.addRow(t, i, 1)
			continue
		}
		return
	}
}

// clearColumn reduces the entries below the pivot by truncated division.
// A non zero remainder becomes the new pivot and true is returned.
func (s *snfState) clearColumn(t int) (pivotChanged bool) {
	p := s.a.At(t, t)
	for _, i := range sortedKeys(s.a.cols[t]) {
		if i == t {
			continue
		}
		q := s.a.At(i, t) / p
		s.addRow(i, t, -q)
	}
	minRow, minVal := -1, AbsInt64(p)
	for i, v := range s.a.cols[t] {
		if i == t {
			continue
		}
		if av := AbsInt64(v); av < minVal || (av == minVal && i < minRow) {
			minRow, minVal = i, av
		}
	}
	if minRow < 0 {
		return false
	}
	s.swapRows(t, minRow)
	return true
}

func (s *snfState) clearRow(t int) (pivotChanged bool) {
	p := s.a.At(t, t)
	for _, j := range sortedKeys(s.a.rows[t]) {
		if j == t {
			continue
		}
		q := s.a.At(t, j) / p
		s.addCol(j, t, -q)
	}
	minCol, minVal := -1, AbsInt64(p)
	for j, v := range s.a.rows[t] {
		if j == t {
			continue
		}
		if av := AbsInt64(v); av < minVal || (av == minVal && j < minCol) {
			minCol, minVal = j, av
		}
	}
	if minCol < 0 {
		return false
	}
	s.swapCols(t, minCol)
	return true
}

func (s *snfState) findNonDivisible(t int) (row int, ok bool) {
	p := s.a.At(t, t)
	if p == 1 || p == -1 {
		return
	}
	nr, _ := s.a.Dims()
	for i := t + 1; i < nr; i++ {
		for j, v := range s.a.rows[i] {
			if j > t && v%p != 0 {
				return i, true
			}
		}
	}
	return
}

// Row operations act on U^-1 from the right, column operations on W
// from the right.

func (s *snfState) swapRows(i, k int) {
	if i == k {
		return
	}
	s.a.SwapRows(i, k)
	if s.uinv != nil {
		s.uinv.SwapCols(i, k)
	}
}

func (s *snfState) addRow(dst, src int, q int64) {
	if q == 0 {
		return
	}
	s.a.AddRowMultiple(dst, src, q)
	if s.uinv != nil {
		s.uinv.AddColMultiple(src, dst, -q)
	}
}

func (s *snfState) negateRow(i int) {
	s.a.NegateRow(i)
	if s.uinv != nil {
		s.uinv.NegateCol(i)
	}
}

func (s *snfState) swapCols(j, k int) {
	if j == k {
		return
	}
	s.a.SwapCols(j, k)
	if s.w != nil {
		s.w.SwapCols(j, k)
	}
}

func (s *snfState) addCol(dst, src int, q int64) {
	if q == 0 {
		return
	}
	s.a.AddColMultiple(dst, src, q)
	if s.w != nil {
		s.w.AddColMultiple(dst, src, q)
	}
}
