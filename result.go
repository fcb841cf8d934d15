/*
 * result.go, part of gopt.
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
	"math"

	v3 "github.com/rmera/gopt/v3"
	"gonum.org/v1/gonum/mat"
)

//CalcResult is what a Calculator returns for one geometry: the energy,
//in Hartree, its gradient, in Hartree/Bohr, with one row per atom, and,
//if the calculator supports it, the Hessian, in Hartree/Bohr^2.
//A CalcResult is immutable once returned; callers that need to modify
//the values should work on a copy.
type CalcResult struct {
	Energy   float64
	Gradient *v3.Matrix
	Hessian  *mat.SymDense //may be nil
}

//GradNorm returns the Euclidean norm of the gradient.
func (R *CalcResult) GradNorm() float64 {
	if R.Gradient == nil {
		return 0
	}
	return R.Gradient.Norm()
}

//GradMax returns the largest absolute component of the gradient.
func (R *CalcResult) GradMax() float64 {
	if R.Gradient == nil {
		return 0
	}
	var max float64
	n := R.Gradient.NVecs()
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			if a := math.Abs(R.Gradient.At(i, j)); a > max {
				max = a
			}
		}
	}
	return max
}

//Copy returns a deep copy of the result.
func (R *CalcResult) Copy() *CalcResult {
	ret := &CalcResult{Energy: R.Energy}
	if R.Gradient != nil {
		ret.Gradient = R.Gradient.Clone()
	}
	if R.Hessian != nil {
		n := R.Hessian.SymmetricDim()
		h := mat.NewSymDense(n, nil)
		h.CopySym(R.Hessian)
		ret.Hessian = h
	}
	return ret
}
