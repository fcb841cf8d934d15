/*
 * atoms.go, part of gopt.
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

package opt

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/gopt/v3"
)

//Atom contains the non-geometric information for one atom in a system.
type Atom struct {
	//Chemical element symbol, e.g. "Na".
	Symbol string
	//Tag is for the user to keep any extra per-atom information.
	Tag int
}

//Copy returns a copy of the atom.
func (A *Atom) Copy() *Atom {
	return &Atom{Symbol: A.Symbol, Tag: A.Tag}
}

//Geometry is an ordered set of atoms plus their Cartesian coordinates,
//in Bohr. The number and order of the atoms is fixed for the lifetime of
//the Geometry; the coordinates are mutable.
type Geometry struct {
	atoms    []*Atom
	coords   *v3.Matrix
	charge   int
	multi    int
}

//NewGeometry builds a Geometry from atoms and coordinates. The number of
//atoms and of coordinate vectors must match.
func NewGeometry(atoms []*Atom, coords *v3.Matrix) (*Geometry, error) {
	if atoms == nil || coords == nil {
		return nil, fmt.Errorf("NewGeometry: nil atoms or coordinates")
	}
	if len(atoms) != coords.NVecs() {
		return nil, fmt.Errorf("NewGeometry: %d atoms but %d coordinate vectors", len(atoms), coords.NVecs())
	}
	return &Geometry{atoms: atoms, coords: coords, multi: 1}, nil
}

//Len returns the number of atoms in the geometry.
func (G *Geometry) Len() int {
	return len(G.atoms)
}

//Atom returns the ith atom. It panics if i is out of range.
func (G *Geometry) Atom(i int) *Atom {
	return G.atoms[i]
}

//Coords returns the coordinates of the geometry. The returned matrix is
//not a copy; changes to it change the geometry.
func (G *Geometry) Coords() *v3.Matrix {
	return G.coords
}

//SetCoords copies the given coordinates into the geometry. The number of
//vectors must match the number of atoms.
func (G *Geometry) SetCoords(c *v3.Matrix) error {
	if c.NVecs() != G.Len() {
		return fmt.Errorf("SetCoords: %d vectors for %d atoms", c.NVecs(), G.Len())
	}
	G.coords.Copy(c)
	return nil
}

//Charge returns the total charge of the system.
func (G *Geometry) Charge() int { return G.charge }

//Multi returns the spin multiplicity of the system.
func (G *Geometry) Multi() int { return G.multi }

//SetCharge sets the total charge of the system.
func (G *Geometry) SetCharge(i int) { G.charge = i }

//SetMulti sets the spin multiplicity of the system.
func (G *Geometry) SetMulti(i int) { G.multi = i }

//Copy returns a deep copy of the geometry.
func (G *Geometry) Copy() *Geometry {
	atoms := make([]*Atom, len(G.atoms))
	for i, v := range G.atoms {
		atoms[i] = v.Copy()
	}
	ret, _ := NewGeometry(atoms, G.coords.Clone()) //can't fail, dimensions match by construction
	ret.charge = G.charge
	ret.multi = G.multi
	return ret
}

//SomeAtoms returns a new Geometry with copies of the atoms with the
//indexes in list, in the given order. Charge and multiplicity are NOT
//inherited, as they rarely make sense for a subsystem.
func (G *Geometry) SomeAtoms(list []int) (*Geometry, error) {
	atoms := make([]*Atom, 0, len(list))
	for _, i := range list {
		if i < 0 || i >= G.Len() {
			return nil, fmt.Errorf("SomeAtoms: index %d out of range for %d atoms", i, G.Len())
		}
		atoms = append(atoms, G.atoms[i].Copy())
	}
	coords := v3.Zeros(len(list))
	coords.SomeVecs(G.coords, list)
	return NewGeometry(atoms, coords)
}

//Masses returns a slice with the mass of each atom, in Daltons.
//It fails if any element is not in the internal table.
func (G *Geometry) Masses() ([]float64, error) {
	ret := make([]float64, G.Len())
	for i, v := range G.atoms {
		m, ok := symbolMass[v.Symbol]
		if !ok {
			return nil, fmt.Errorf("Masses: no mass for element %s", v.Symbol)
		}
		ret[i] = m
	}
	return ret, nil
}

//SortedIndexes returns a sorted copy of the given atom index list with
//duplicates removed.
func SortedIndexes(list []int) []int {
	ret := make([]int, len(list))
	copy(ret, list)
	sort.Ints(ret)
	out := ret[:0]
	for i, v := range ret {
		if i == 0 || v != ret[i-1] {
			out = append(out, v)
		}
	}
	return out
}
