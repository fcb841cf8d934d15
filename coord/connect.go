/*
 * connect.go, part of gopt.
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
 * Gopt is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package coord

import (
	"fmt"
	"math"

	opt "github.com/rmera/gopt"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//bondFactor scales the sum of covalent radii in the bond criterion.
const bondFactor = 1.3

//nearLinear is the angle, in radians, above which bends are considered
//too close to linear to make stable internal coordinates.
var nearLinear = 175 * math.Pi / 180

//BuildPrimitives generates a redundant set of internal coordinates for
//the geometry: one stretch per perceived bond (two atoms closer than
//bondFactor times the sum of their covalent radii), bends for every
//pair of bonds sharing an atom, and torsions around every central bond.
//Disconnected fragments are joined through their closest atom pair, so
//the resulting set always spans the whole system.
func BuildPrimitives(geom *opt.Geometry) ([]Primitive, error) {
	n := geom.Len()
	if n < 2 {
		return nil, Error{ErrFewAtoms, []string{"BuildPrimitives"}, true, false}
	}
	cart := geom.Coords()
	radii := make([]float64, n)
	for i := 0; i < n; i++ {
		r, ok := opt.CovalentRadius(geom.Atom(i).Symbol)
		if !ok {
			return nil, Error{fmt.Sprintf("%s: %s", ErrNoElement, geom.Atom(i).Symbol), []string{"BuildPrimitives"}, true, false}
		}
		radii[i] = r
	}
	dist := func(i, j int) float64 {
		return norm3(sub3(triple(cart, i), triple(cart, j)))
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	type bond struct{ i, j int }
	bonds := make([]bond, 0, 2*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist(i, j) < bondFactor*(radii[i]+radii[j]) {
				bonds = append(bonds, bond{i, j})
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}
	//Join disconnected fragments through their closest atom pair. Each
	//pass merges at least two components, so this terminates.
	for {
		comps := topo.ConnectedComponents(g)
		if len(comps) <= 1 {
			break
		}
		best := bond{-1, -1}
		bestd := math.Inf(1)
		for _, na := range comps[0] {
			a := int(na.ID())
			for _, comp := range comps[1:] {
				for _, nb := range comp {
					b := int(nb.ID())
					if d := dist(a, b); d < bestd {
						bestd = d
						best = bond{a, b}
					}
				}
			}
		}
		bonds = append(bonds, best)
		g.SetEdge(g.NewEdge(simple.Node(best.i), simple.Node(best.j)))
	}
	neighbors := make([][]int, n)
	for _, b := range bonds {
		neighbors[b.i] = append(neighbors[b.i], b.j)
		neighbors[b.j] = append(neighbors[b.j], b.i)
	}
	prims := make([]Primitive, 0, 4*len(bonds))
	for _, b := range bonds {
		prims = append(prims, &StretchCoord{I: b.i, J: b.j})
	}
	angle := func(i, j, k int) float64 {
		v, err := (&BendCoord{I: i, J: j, K: k}).Value(cart)
		if err != nil {
			return math.Pi //treat as fully linear, the caller will skip it
		}
		return v
	}
	for j := 0; j < n; j++ {
		nb := neighbors[j]
		for a := 0; a < len(nb); a++ {
			for b := a + 1; b < len(nb); b++ {
				if angle(nb[a], j, nb[b]) < nearLinear {
					prims = append(prims, &BendCoord{I: nb[a], J: j, K: nb[b]})
				}
			}
		}
	}
	for _, b := range bonds {
		j, k := b.i, b.j
		for _, i := range neighbors[j] {
			if i == k {
				continue
			}
			if angle(i, j, k) >= nearLinear {
				continue
			}
			for _, l := range neighbors[k] {
				if l == j || l == i {
					continue
				}
				if angle(j, k, l) >= nearLinear {
					continue
				}
				prims = append(prims, &TorsionCoord{I: i, J: j, K: k, L: l})
			}
		}
	}
	return prims, nil
}
