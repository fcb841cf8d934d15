/*
 * stepper.go, part of gopt.
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

package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//rfoStep computes a rational function optimization step from the
//gradient and the current quasi-Newton Hessian, by diagonalizing the
//augmented Hessian
//
//    | H  g |
//    | g' 0 |
//
//and rescaling the eigenvector of the lowest eigenvalue (second
//lowest when walking to a saddle point). The shift implicit in the
//eigenvalue keeps the step well behaved even with an indefinite H.
func rfoStep(hess *mat.SymDense, grad []float64, ts bool) ([]float64, error) {
	n := len(grad)
	aug := mat.NewSymDense(n+1, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			aug.SetSym(i, j, hess.At(i, j))
		}
		aug.SetSym(i, n, grad[i])
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(aug, true); !ok {
		return nil, Error{ErrEigen, []string{"rfoStep"}, true}
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	//eigenvalues come out in ascending order
	which := 0
	if ts {
		which = 1
	}
	nu := vecs.At(n, which)
	if math.Abs(nu) < 1e-12 {
		//the gradient has no overlap with this mode; fall back to
		//the next one
		which++
		nu = vecs.At(n, which)
		if math.Abs(nu) < 1e-12 {
			return nil, Error{ErrEigen, []string{"rfoStep"}, true}
		}
	}
	step := make([]float64, n)
	for i := 0; i < n; i++ {
		step[i] = vecs.At(i, which) / nu
	}
	return step, nil
}

//sdStep is a plain steepest descent step.
func sdStep(grad []float64) []float64 {
	step := make([]float64, len(grad))
	for i, g := range grad {
		step[i] = -g
	}
	return step
}

//cgStep is a Polak-Ribiere conjugate gradient step. prevGrad and
//prevDir may be nil on the first iteration, in which case the step
//reduces to steepest descent. The returned direction should be passed
//back as prevDir on the next call.
func cgStep(grad, prevGrad, prevDir []float64) []float64 {
	dir := make([]float64, len(grad))
	if prevGrad == nil || prevDir == nil {
		for i, g := range grad {
			dir[i] = -g
		}
		return dir
	}
	num, den := 0.0, 0.0
	for i := range grad {
		num += grad[i] * (grad[i] - prevGrad[i])
		den += prevGrad[i] * prevGrad[i]
	}
	beta := 0.0
	if den > 0 {
		beta = num / den
	}
	if beta < 0 {
		//automatic restart
		beta = 0
	}
	for i, g := range grad {
		dir[i] = -g + beta*prevDir[i]
	}
	return dir
}

//clamp scales step down to the trust radius if its norm exceeds it.
//It reports whether scaling took place.
func clamp(step []float64, trust float64) bool {
	norm := 0.0
	for _, x := range step {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm <= trust || norm == 0 {
		return false
	}
	f := trust / norm
	for i := range step {
		step[i] *= f
	}
	return true
}
