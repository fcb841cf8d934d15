/*
 * analytic.go, part of gopt.
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

package calc

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

//Harmonic is an analytic potential that tethers every atom to a
//reference position with the same force constant. It is meant for
//testing drivers without an external program.
type Harmonic struct {
	//Ref holds the equilibrium positions, in Bohr.
	Ref *v3.Matrix
	//K is the force constant, in Hartree/Bohr^2.
	K float64
}

//Evaluate returns the harmonic energy and gradient for geom.
func (H *Harmonic) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	if H.Ref == nil || H.Ref.NVecs() != geom.Len() {
		return nil, Error{ErrMissingData, "Harmonic", "", "reference geometry missing or of the wrong size", []string{"Evaluate"}, true}
	}
	c := geom.Coords()
	n := geom.Len()
	grad := v3.Zeros(n)
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			d := c.At(i, j) - H.Ref.At(i, j)
			energy += 0.5 * H.K * d * d
			grad.Set(i, j, H.K*d)
		}
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}

//EvaluateHessian returns the (constant, diagonal) Hessian of the
//harmonic potential, making Harmonic satisfy the HessianCalculator
//interface of the parent package.
func (H *Harmonic) EvaluateHessian(ctx context.Context, geom *opt.Geometry) (*mat.SymDense, error) {
	n := 3 * geom.Len()
	hess := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		hess.SetSym(i, i, H.K)
	}
	return hess, nil
}

//LennardJones is an analytic pairwise 12-6 potential, again meant for
//testing. All pairs interact; there is no cutoff.
type LennardJones struct {
	//Sigma is the zero-crossing distance, in Bohr.
	Sigma float64
	//Epsilon is the well depth, in Hartree.
	Epsilon float64
}

//Evaluate returns the Lennard-Jones energy and gradient for geom.
func (L *LennardJones) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	c := geom.Coords()
	n := geom.Len()
	grad := v3.Zeros(n)
	energy := 0.0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			var d [3]float64
			r2 := 0.0
			for k := 0; k < 3; k++ {
				d[k] = c.At(i, k) - c.At(j, k)
				r2 += d[k] * d[k]
			}
			if r2 == 0 {
				return nil, Error{ErrMissingData, "LennardJones", "", "two atoms at the same position", []string{"Evaluate"}, true}
			}
			s2 := L.Sigma * L.Sigma / r2
			s6 := s2 * s2 * s2
			s12 := s6 * s6
			energy += 4 * L.Epsilon * (s12 - s6)
			//dE/dr2 = 4*eps*(-6*s12 + 3*s6)/r2
			de := 4 * L.Epsilon * (-6*s12 + 3*s6) / r2
			for k := 0; k < 3; k++ {
				g := 2 * de * d[k]
				grad.Set(i, k, grad.At(i, k)+g)
				grad.Set(j, k, grad.At(j, k)-g)
			}
		}
	}
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return nil, Error{ErrMissingData, "LennardJones", "", "energy is not finite", []string{"Evaluate"}, true}
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}
