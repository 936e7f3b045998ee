package homology

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/midoruton/gmsh/mesh"
)

// Options control the pipeline of the Homology facade
type Options struct {
	Reduce  bool // eliminate reduction pairs before computing
	Combine bool // merge cells across faces with two cofaces, then reduce again
	// MaxReductions bounds the reduction pairs of one simplification of the
	// complex, over every pass between combinations, <= 0 means no bound.
	// FindThickCuts simplifies on both sides of the swap.
	MaxReductions int
	// Dimensions lists the dimensions whose chains are written, empty means
	// all
	Dimensions []int
	Logger     logrus.FieldLogger
}

func DefaultOptions() Options {
	return Options{
		Reduce:  true,
		Combine: true,
		Logger:  logrus.StandardLogger(),
	}
}

// Homology builds the cell complex of a domain, relative to an optional
// subdomain, both given as lists of physical group tags, and writes
// homology generators and thick cuts
type Homology struct {
	model     *mesh.Model
	domain    []int
	subdomain []int
	opts      Options
	log       logrus.FieldLogger

	cc *CellComplex
}

// NewHomology selects the entities of the physical groups and builds the
// cell complex. An empty domain list takes every entity not in the
// subdomain.
func NewHomology(m *mesh.Model, domain, subdomain []int, opts Options) (*Homology, error) {
	h := &Homology{
		model:     m,
		domain:    domain,
		subdomain: subdomain,
		opts:      opts,
		log:       opts.Logger,
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}

	subEntities := m.GetPhysicalEntities(subdomain)
	var domEntities []*mesh.Entity
	if len(domain) == 0 {
		inSub := make(map[mesh.EntityKey]bool, len(subEntities))
		for _, e := range subEntities {
			inSub[e.Key()] = true
		}
		for _, e := range m.GetEntities() {
			if !inSub[e.Key()] {
				domEntities = append(domEntities, e)
			}
		}
	} else {
		domEntities = m.GetPhysicalEntities(domain)
	}

	cc, err := NewCellComplex(m, domEntities, subEntities)
	if err != nil {
		return nil, err
	}
	h.cc = cc
	h.log.WithFields(logrus.Fields{
		"domain":    domain,
		"subdomain": subdomain,
		"cells":     h.sizes(),
	}).Info("cell complex created")
	return h, nil
}

// CellComplex returns the cell complex owned by the facade
func (h *Homology) CellComplex() *CellComplex { return h.cc }

// SwapSubdomain exchanges the roles of domain and subdomain cells
func (h *Homology) SwapSubdomain() { h.cc.SwapSubdomain() }

func (h *Homology) sizes() [4]int {
	return [4]int{h.cc.GetSize(0), h.cc.GetSize(1), h.cc.GetSize(2), h.cc.GetSize(3)}
}

// simplify runs the configured reductions and combinations and returns
// the number of eliminated pairs and merged cells. MaxReductions bounds the
// pairs of the whole call, combinations are not counted against it.
func (h *Homology) simplify() (pairs, merges int) {
	reduce := func() int {
		if !h.opts.Reduce {
			return 0
		}
		limit := 0
		if h.opts.MaxReductions > 0 {
			limit = h.opts.MaxReductions - pairs
			if limit <= 0 {
				return 0
			}
		}
		n := h.cc.ReduceComplexBounded(limit)
		pairs += n
		return n
	}

	n := reduce()
	h.log.WithFields(logrus.Fields{"pairs": n, "cells": h.sizes()}).Debug("complex reduced")
	if !h.opts.Combine {
		return
	}
	for {
		merged := 0
		for d := h.cc.GetDim(); d >= 1; d-- {
			merged += h.cc.Combine(d)
		}
		merges += merged
		n = reduce()
		if merged+n == 0 {
			break
		}
		h.log.WithFields(logrus.Fields{"merged": merged, "pairs": n, "cells": h.sizes()}).Debug("complex combined")
	}
	return
}

// FindGenerators computes the homology of the domain relative to the
// subdomain. If filename is not empty the reduced complex is written to it,
// followed by one view per generator named "<dim>D Generator <i>".
func (h *Homology) FindGenerators(filename string) (*ChainComplex, error) {
	h.simplify()

	cx := NewChainComplex(h.cc, true)
	if err := cx.ComputeHomology(); err != nil {
		return nil, err
	}
	h.logResult(cx, "homology computed")

	if filename == "" {
		return cx, nil
	}
	chains, err := h.Chains(cx, "Generator")
	if err != nil {
		return cx, err
	}
	return cx, h.write(filename, chains)
}

// FindThickCuts computes the cohomology of the complex with domain and
// subdomain swapped and writes its generators, named "<dim>D Thick cut
// <i>". The facade is left with its original subdomain.
func (h *Homology) FindThickCuts(filename string) (*ChainComplex, error) {
	if len(h.cc.GetSubdomain()) == 0 {
		return nil, ErrEmptySubdomain
	}
	h.simplify()
	h.cc.SwapSubdomain()
	defer h.cc.SwapSubdomain()
	h.simplify()

	cx := NewChainComplex(h.cc, true)
	if err := cx.ComputeCohomology(); err != nil {
		return nil, err
	}
	h.logResult(cx, "cohomology computed")

	if filename == "" {
		return cx, nil
	}
	chains, err := h.Chains(cx, "Thick cut")
	if err != nil {
		return cx, err
	}
	return cx, h.write(filename, chains)
}

// Chains turns the computed generators of cx into named chains over the
// cell complex, for the configured dimensions. Cohomology generators become
// cochains.
func (h *Homology) Chains(cx *ChainComplex, label string) ([]*Chain, error) {
	if !cx.IsComputed() {
		return nil, ErrNotComputed
	}
	var chains []*Chain
	for d := 0; d <= 3; d++ {
		if !h.wantDimension(d) {
			continue
		}
		cells := cx.GetCells(d)
		for i := 0; i < cx.GetBasisSize(d); i++ {
			coeffs, err := cx.GetCoeffVector(d, i)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("%dD %s %d", d, label, i+1)
			if t := cx.GetTorsion(d, i); t > 1 {
				name += fmt.Sprintf(" T%d", t)
			}
			chain, err := newChain(h.cc, d, cells, coeffs, name, cx.IsCohomology())
			if err != nil {
				return nil, err
			}
			// subdomain as of cx, FindThickCuts swaps it back
			chain.sub = cx.subdomain
			chain.SetTorsion(cx.GetTorsion(d, i))
			chains = append(chains, chain)
		}
	}
	return chains, nil
}

func (h *Homology) wantDimension(d int) bool {
	if len(h.opts.Dimensions) == 0 {
		return true
	}
	for _, w := range h.opts.Dimensions {
		if w == d {
			return true
		}
	}
	return false
}

func (h *Homology) write(filename string, chains []*Chain) error {
	if err := h.cc.WriteComplexMSH(filename, chains...); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	for _, c := range chains {
		if err := c.WriteChainMSH(filename); err != nil {
			return fmt.Errorf("writing %q to %s: %w", c.GetName(), filename, err)
		}
	}
	h.log.WithFields(logrus.Fields{"file": filename, "chains": len(chains)}).Info("results written")
	return nil
}

func (h *Homology) logResult(cx *ChainComplex, msg string) {
	for d := 0; d <= cx.GetDim(); d++ {
		h.log.WithFields(logrus.Fields{
			"dim":     d,
			"cells":   len(cx.GetCells(d)),
			"betti":   cx.GetBettiNumber(d),
			"torsion": cx.GetTorsionCoefficients(d),
		}).Info(msg)
	}
}
