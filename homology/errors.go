package homology

import (
	"errors"

	"github.com/midoruton/gmsh/utils"
)

// Sentinel errors returned by the homology engine. Callers match them with
// errors.Is, the returned errors wrap them with context.
var (
	// Construction
	ErrEmptyDomain        = errors.New("homology: domain has no elements")
	ErrOverlappingDomains = errors.New("homology: entity in both domain and subdomain")
	ErrDegenerateElement  = errors.New("homology: degenerate element")
	ErrUnsupportedElement = errors.New("homology: unsupported element type")
	ErrMissingVertex      = errors.New("homology: element references a missing vertex")

	// Invariants
	ErrBoundaryOfBoundary    = errors.New("homology: boundary of boundary is not zero")
	ErrInconsistentIncidence = errors.New("homology: inconsistent incidence")
	ErrCoefficientOverflow   = errors.New("homology: coefficient overflow")

	// Usage
	ErrEmptySubdomain   = errors.New("homology: subdomain has no elements")
	ErrNotComputed      = errors.New("homology: homology not computed")
	ErrChainLength      = errors.New("homology: cells and coefficients differ in length")
	ErrInvalidDimension = errors.New("homology: invalid cell dimension")
)

// catchOverflow turns an int64 overflow panic into ErrCoefficientOverflow
func catchOverflow(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok && errors.Is(e, utils.ErrIntegerOverflow) {
			*err = ErrCoefficientOverflow
			return
		}
		panic(r)
	}
}
