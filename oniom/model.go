/*
 * model.go, part of gopt.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package oniom implements multi-layer partitioned energy and gradient
//evaluation: nested atom subsets, each treated with its own
//calculator, combined with the additive scheme
//
//	E = E(real, low) + sum_i [ E(model_i, high_i) - E(model_i, low_i) ]
//
//where each model term is evaluated on the layer's atom subset,
//saturated with cap atoms where the boundary cuts a bond. A Model
//satisfies the Calculator interface of the parent package, so a
//partitioned system plugs into the optimizer like any single
//calculator.
package oniom

import (
	"context"
	"sync"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

//resolvedLink is a Link with the cap factor and element decided.
type resolvedLink struct {
	inner, outer int
	g            float64
	symbol       string
}

//Model is a validated ONIOM partition over a fixed number of atoms.
//Validation happens once, at construction, so Evaluate never invokes
//a calculator on an inconsistent partition.
type Model struct {
	layers []*Layer
	eff    [][]int //effective atom lists, empty layers resolved
	links  [][]resolvedLink
	natoms int
}

//NewModel validates the partition described by layers, outermost
//first, over the atoms of geom. The outermost layer must span the
//whole system (an empty atom list does so implicitly) and every other
//layer must be a subset of its parent. geom is only consulted for the
//atom count and the element symbols; the coordinates used in each
//evaluation are those of the geometry passed to Evaluate.
func NewModel(geom *opt.Geometry, layers ...*Layer) (*Model, error) {
	if geom == nil {
		return nil, Error{ErrNilGeometry, "", []string{"NewModel"}, true}
	}
	if len(layers) == 0 {
		return nil, Error{ErrNoLayers, "", []string{"NewModel"}, true}
	}
	natoms := geom.Len()
	all := make([]int, natoms)
	for i := range all {
		all[i] = i
	}
	M := &Model{
		layers: layers,
		eff:    make([][]int, len(layers)),
		links:  make([][]resolvedLink, len(layers)),
		natoms: natoms,
	}
	parent := all
	parentSet := atomSet(all)
	for li, L := range layers {
		if L.Calc == nil {
			return nil, Error{ErrNilCalculator, L.Name, []string{"NewModel"}, true}
		}
		eff := L.Atoms
		if len(eff) == 0 {
			//a "real dummy" layer: switch calculators without
			//shrinking the subsystem
			eff = parent
		}
		seen := make(map[int]bool, len(eff))
		for _, a := range eff {
			if a < 0 || a >= natoms {
				return nil, Error{ErrAtomRange, L.Name, []string{"NewModel"}, true}
			}
			if seen[a] {
				return nil, Error{ErrDuplicateAtom, L.Name, []string{"NewModel"}, true}
			}
			seen[a] = true
			if !parentSet[a] {
				return nil, Error{ErrNotNested, L.Name, []string{"NewModel"}, true}
			}
		}
		if li == 0 && len(eff) != natoms {
			return nil, Error{ErrNotNested + ": the outermost layer must span all atoms", L.Name, []string{"NewModel"}, true}
		}
		links := make([]resolvedLink, 0, len(L.Links))
		for _, lk := range L.Links {
			if !seen[lk.Inner] || seen[lk.Outer] || !parentSet[lk.Outer] {
				return nil, Error{ErrBadLink, L.Name, []string{"NewModel"}, true}
			}
			sym := lk.Symbol
			if sym == "" {
				sym = "H"
			}
			g := lk.G
			if g == 0 {
				var err error
				g, err = capFactor(geom.Atom(lk.Inner).Symbol, geom.Atom(lk.Outer).Symbol, sym)
				if err != nil {
					return nil, errDecorate(err, "NewModel")
				}
			}
			links = append(links, resolvedLink{inner: lk.Inner, outer: lk.Outer, g: g, symbol: sym})
		}
		M.eff[li] = eff
		M.links[li] = links
		parent = eff
		parentSet = seen
	}
	return M, nil
}

//Natoms returns the number of atoms of the full system.
func (M *Model) Natoms() int { return M.natoms }

//Layers returns how many layers the partition has.
func (M *Model) Layers() int { return len(M.layers) }

//subGeometry extracts the atoms of layer li from geom and appends its
//cap atoms.
func (M *Model) subGeometry(geom *opt.Geometry, li int) (*opt.Geometry, error) {
	atoms := M.eff[li]
	links := M.links[li]
	sub := make([]*opt.Atom, 0, len(atoms)+len(links))
	coords := v3.Zeros(len(atoms) + len(links))
	full := geom.Coords()
	for k, a := range atoms {
		sub = append(sub, geom.Atom(a).Copy())
		for j := 0; j < 3; j++ {
			coords.Set(k, j, full.At(a, j))
		}
	}
	for k, lk := range links {
		sub = append(sub, &opt.Atom{Symbol: lk.symbol})
		for j := 0; j < 3; j++ {
			x := (1-lk.g)*full.At(lk.inner, j) + lk.g*full.At(lk.outer, j)
			coords.Set(len(atoms)+k, j, x)
		}
	}
	return opt.NewGeometry(sub, coords)
}

//scatter accumulates a sub-system gradient into the full-system one,
//redistributing each cap atom's contribution onto the two atoms of the
//bond it saturates, per the chain rule of the cap position.
func (M *Model) scatter(full, sub *v3.Matrix, li int, sign float64) {
	atoms := M.eff[li]
	links := M.links[li]
	for k, a := range atoms {
		for j := 0; j < 3; j++ {
			full.Set(a, j, full.At(a, j)+sign*sub.At(k, j))
		}
	}
	for k, lk := range links {
		for j := 0; j < 3; j++ {
			c := sign * sub.At(len(atoms)+k, j)
			full.Set(lk.inner, j, full.At(lk.inner, j)+(1-lk.g)*c)
			full.Set(lk.outer, j, full.At(lk.outer, j)+lk.g*c)
		}
	}
}

//job is one calculator invocation of the combination rule.
type job struct {
	layer int     //index into eff/links, for sub-system extraction
	name  string  //layer name, for error reporting
	calc  opt.Calculator
	sign  float64
}

//jobs expands the partition into its energy terms: the real system at
//the outermost level, plus a high-minus-low pair per inner layer.
func (M *Model) jobs() []job {
	ret := []job{{layer: 0, name: M.layers[0].Name, calc: M.layers[0].Calc, sign: 1}}
	for i := 1; i < len(M.layers); i++ {
		ret = append(ret,
			job{layer: i, name: M.layers[i].Name, calc: M.layers[i].Calc, sign: 1},
			job{layer: i, name: M.layers[i].Name, calc: M.layers[i-1].Calc, sign: -1})
	}
	return ret
}

//Evaluate computes the combined energy and gradient of geom. The
//component evaluations are independent, so they run concurrently; the
//results are merged only after every one of them has returned. Any
//component failure is fatal for the whole evaluation.
func (M *Model) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	if geom == nil || geom.Len() != M.natoms {
		return nil, Error{ErrNilGeometry, "", []string{"Evaluate"}, true}
	}
	jobs := M.jobs()
	results := make([]*opt.CalcResult, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, jb := range jobs {
		sub, err := M.subGeometry(geom, jb.layer)
		if err != nil {
			return nil, errDecorate(wrapErr(err, jb.name), "Evaluate")
		}
		wg.Add(1)
		go func(i int, c opt.Calculator, sub *opt.Geometry) {
			defer wg.Done()
			results[i], errs[i] = c.Evaluate(ctx, sub)
		}(i, jb.calc, sub)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, errDecorate(wrapErr(err, jobs[i].name), "Evaluate")
		}
	}
	energy := 0.0
	grad := v3.Zeros(M.natoms)
	for i, jb := range jobs {
		energy += jb.sign * results[i].Energy
		M.scatter(grad, results[i].Gradient, jb.layer, jb.sign)
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}

//wrapErr attaches a layer name to foreign errors so failures can be
//traced to the component evaluation that caused them.
func wrapErr(err error, layer string) error {
	if e, ok := err.(opt.Error); ok {
		return e
	}
	return Error{err.Error(), layer, nil, true}
}
