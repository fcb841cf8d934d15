/*
 * redundant.go, part of gopt.
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
	"io"
	"log"
	"math"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
	"gonum.org/v1/gonum/mat"
)

//Redundant is a redundant internal coordinate representation: one
//coordinate per primitive (stretch, bend, torsion), normally more than
//the 3N-6 internal degrees of freedom. The surplus makes the Wilson B
//matrix rank deficient, so gradient and Hessian transformations go
//through a generalized inverse with a singular value cutoff.
type Redundant struct {
	natoms  int
	prims   []Primitive
	svdTol  float64
	maxIter int
	stepTol float64
	log     *log.Logger
}

//NewRedundant builds a redundant internal representation for the
//geometry, generating the primitives from its connectivity.
func NewRedundant(geom *opt.Geometry) (*Redundant, error) {
	prims, err := BuildPrimitives(geom)
	if err != nil {
		return nil, errDecorate(err, "NewRedundant")
	}
	return NewRedundantFrom(geom.Len(), prims)
}

//NewRedundantFrom builds a redundant internal representation for natoms
//atoms from an externally supplied primitive set.
func NewRedundantFrom(natoms int, prims []Primitive) (*Redundant, error) {
	if len(prims) == 0 {
		return nil, Error{ErrFewAtoms, []string{"NewRedundantFrom"}, true, false}
	}
	return &Redundant{
		natoms:  natoms,
		prims:   prims,
		svdTol:  1e-8,
		maxIter: 25,
		stepTol: 1e-10,
		log:     log.New(io.Discard, "", 0),
	}, nil
}

//SetLogger redirects the representation's warnings. By default they
//are discarded.
func (R *Redundant) SetLogger(l *log.Logger) {
	if l != nil {
		R.log = l
	}
}

//Primitives returns the primitive coordinates of the representation.
//The returned slice must not be modified.
func (R *Redundant) Primitives() []Primitive {
	return R.prims
}

func (R *Redundant) Dim() int {
	return len(R.prims)
}

func (R *Redundant) Internals(cart *v3.Matrix) ([]float64, error) {
	if cart.NVecs() != R.natoms {
		return nil, Error{ErrShape, []string{"Internals"}, true, false}
	}
	q := make([]float64, len(R.prims))
	for i, p := range R.prims {
		v, err := p.Value(cart)
		if err != nil {
			return nil, errDecorate(err, "Internals")
		}
		q[i] = v
	}
	return q, nil
}

//Wilson returns the Wilson B matrix at cart: dim rows, one per
//primitive, times 3N columns.
func (R *Redundant) Wilson(cart *v3.Matrix) (*mat.Dense, error) {
	if cart.NVecs() != R.natoms {
		return nil, Error{ErrShape, []string{"Wilson"}, true, false}
	}
	B := mat.NewDense(len(R.prims), 3*R.natoms, nil)
	row := make([]float64, 3*R.natoms)
	for i, p := range R.prims {
		if err := p.Row(row, cart); err != nil {
			return nil, errDecorate(err, "Wilson")
		}
		B.SetRow(i, row)
	}
	return B, nil
}

//ginv returns the generalized inverse of G = B*B^T, dropping singular
//values below svdTol relative to the largest one.
func (R *Redundant) ginv(B *mat.Dense) (*mat.Dense, error) {
	dim := len(R.prims)
	G := mat.NewDense(dim, dim, nil)
	G.Mul(B, B.T())
	var svd mat.SVD
	if ok := svd.Factorize(G, mat.SVDFull); !ok {
		return nil, Error{ErrSingularG, []string{"ginv"}, true, true}
	}
	s := svd.Values(nil)
	if s[0] <= 0 {
		return nil, Error{ErrSingularG, []string{"ginv"}, true, true}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	sinv := mat.NewDense(dim, dim, nil)
	for i, v := range s {
		if v > R.svdTol*s[0] {
			sinv.Set(i, i, 1/v)
		}
	}
	Ginv := mat.NewDense(dim, dim, nil)
	Ginv.Product(&V, sinv, U.T())
	return Ginv, nil
}

func (R *Redundant) GradientToInternal(cart, grad *v3.Matrix) ([]float64, error) {
	if grad.NVecs() != R.natoms {
		return nil, Error{ErrShape, []string{"GradientToInternal"}, true, false}
	}
	B, err := R.Wilson(cart)
	if err != nil {
		return nil, errDecorate(err, "GradientToInternal")
	}
	Ginv, err := R.ginv(B)
	if err != nil {
		return nil, errDecorate(err, "GradientToInternal")
	}
	dim := len(R.prims)
	gx := mat.NewVecDense(3*R.natoms, grad.Flat(nil))
	tmp := mat.NewVecDense(dim, nil)
	tmp.MulVec(B, gx)
	gq := mat.NewVecDense(dim, nil)
	gq.MulVec(Ginv, tmp)
	ret := make([]float64, dim)
	copy(ret, gq.RawVector().Data)
	return ret, nil
}

func (R *Redundant) HessianToInternal(cart *v3.Matrix, hess *mat.SymDense) (*mat.SymDense, error) {
	if hess.SymmetricDim() != 3*R.natoms {
		return nil, Error{ErrShape, []string{"HessianToInternal"}, true, false}
	}
	B, err := R.Wilson(cart)
	if err != nil {
		return nil, errDecorate(err, "HessianToInternal")
	}
	Ginv, err := R.ginv(B)
	if err != nil {
		return nil, errDecorate(err, "HessianToInternal")
	}
	dim := len(R.prims)
	var tmp mat.Dense
	tmp.Product(Ginv, B, hess, B.T(), Ginv)
	ret := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			ret.SetSym(i, j, 0.5*(tmp.At(i, j)+tmp.At(j, i)))
		}
	}
	return ret, nil
}

//Step displaces cart by the internal-coordinate step dq, iterating the
//first-order back-transformation until the Cartesian update drops below
//stepTol. If the iteration does not converge within maxIter cycles, a
//breakdown error is returned and cart is left untouched.
func (R *Redundant) Step(cart *v3.Matrix, dq []float64) (*v3.Matrix, error) {
	if cart.NVecs() != R.natoms || len(dq) != len(R.prims) {
		return nil, Error{ErrShape, []string{"Step"}, true, false}
	}
	q0, err := R.Internals(cart)
	if err != nil {
		return nil, errDecorate(err, "Step")
	}
	target := make([]float64, len(q0))
	for i := range q0 {
		target[i] = q0[i] + dq[i]
	}
	x := cart.Clone()
	diff := make([]float64, len(q0))
	copy(diff, dq)
	dim := len(R.prims)
	for cycle := 0; cycle < R.maxIter; cycle++ {
		B, err := R.Wilson(x)
		if err != nil {
			return nil, errDecorate(err, "Step")
		}
		Ginv, err := R.ginv(B)
		if err != nil {
			return nil, errDecorate(err, "Step")
		}
		dqv := mat.NewVecDense(dim, diff)
		tmp := mat.NewVecDense(dim, nil)
		tmp.MulVec(Ginv, dqv)
		dx := mat.NewVecDense(3*R.natoms, nil)
		dx.MulVec(B.T(), tmp)
		flat := x.Flat(nil)
		var maxmove float64
		for i := range flat {
			d := dx.AtVec(i)
			flat[i] += d
			if a := math.Abs(d); a > maxmove {
				maxmove = a
			}
		}
		x.SetFlat(flat)
		if maxmove < R.stepTol {
			return x, nil
		}
		q, err := R.Internals(x)
		if err != nil {
			return nil, errDecorate(err, "Step")
		}
		for i, p := range R.prims {
			d := target[i] - q[i]
			if p.Kind() == Torsion {
				//dihedrals live on a circle
				d = math.Remainder(d, 2*math.Pi)
			}
			diff[i] = d
		}
	}
	R.log.Printf("back-transformation did not converge after %d cycles", R.maxIter)
	return nil, Error{ErrBackTransform, []string{"Step"}, true, true}
}

//errDecorate asserts that the error implements the library's Error
//interface and decorates it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(opt.Error)
	err2.Decorate(caller)
	return err2
}
