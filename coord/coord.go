/*
 * coord.go, part of gopt.
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

/*
Package coord implements the coordinate representations used by the
optimizers: plain Cartesians and redundant internal coordinates
(stretches, bends and torsions, with the Wilson B matrix connecting them
to Cartesians).

A representation must map geometries, gradients, and Hessians from
Cartesian space to its own space, and take a displacement in its own
space back to Cartesians. For redundant internals the latter is
iterative and can fail near singular geometries; such failures are
reported as breakdown errors (see IsBreakdown) and are recoverable by
falling back to Cartesians.
*/
package coord

import (
	v3 "github.com/rmera/gopt/v3"
	"gonum.org/v1/gonum/mat"
)

//System is a coordinate representation for a fixed number of atoms.
type System interface {
	//Dim returns the number of coordinates in the representation.
	//For redundant internals it normally exceeds 3N-6.
	Dim() int

	//Internals returns the value of every coordinate at cart.
	Internals(cart *v3.Matrix) ([]float64, error)

	//GradientToInternal transforms a Cartesian gradient, taken at cart,
	//to the representation.
	GradientToInternal(cart, grad *v3.Matrix) ([]float64, error)

	//HessianToInternal transforms a Cartesian Hessian, taken at cart, to
	//the representation. The gradient-dependent correction term is
	//neglected, as is usual for optimization purposes.
	HessianToInternal(cart *v3.Matrix, hess *mat.SymDense) (*mat.SymDense, error)

	//Step returns the Cartesian geometry that results from displacing
	//cart by dq, where dq is expressed in the representation. It does
	//not modify cart.
	Step(cart *v3.Matrix, dq []float64) (*v3.Matrix, error)
}

//Cartesian is the pass-through representation: 3N plain Cartesian
//components, in Bohr.
type Cartesian struct {
	natoms int
}

//NewCartesian returns a Cartesian representation for natoms atoms.
func NewCartesian(natoms int) *Cartesian {
	return &Cartesian{natoms: natoms}
}

func (C *Cartesian) Dim() int {
	return 3 * C.natoms
}

func (C *Cartesian) Internals(cart *v3.Matrix) ([]float64, error) {
	if cart.NVecs() != C.natoms {
		return nil, Error{ErrShape, []string{"Internals"}, true, false}
	}
	return cart.Flat(nil), nil
}

func (C *Cartesian) GradientToInternal(cart, grad *v3.Matrix) ([]float64, error) {
	if grad.NVecs() != C.natoms {
		return nil, Error{ErrShape, []string{"GradientToInternal"}, true, false}
	}
	return grad.Flat(nil), nil
}

func (C *Cartesian) HessianToInternal(cart *v3.Matrix, hess *mat.SymDense) (*mat.SymDense, error) {
	n := hess.SymmetricDim()
	if n != 3*C.natoms {
		return nil, Error{ErrShape, []string{"HessianToInternal"}, true, false}
	}
	ret := mat.NewSymDense(n, nil)
	ret.CopySym(hess)
	return ret, nil
}

func (C *Cartesian) Step(cart *v3.Matrix, dq []float64) (*v3.Matrix, error) {
	if cart.NVecs() != C.natoms || len(dq) != 3*C.natoms {
		return nil, Error{ErrShape, []string{"Step"}, true, false}
	}
	ret := cart.Clone()
	flat := ret.Flat(nil)
	for i := range flat {
		flat[i] += dq[i]
	}
	ret.SetFlat(flat)
	return ret, nil
}
