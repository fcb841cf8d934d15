/*
 * hessian.go, part of gopt.
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

package coord

import "gonum.org/v1/gonum/mat"

//Diagonal force constants, in Hartree and radians/Bohr, used to seed
//quasi-Newton Hessians. Stiffer values for stretches reflect that bond
//distances are the hardest degrees of freedom.
const (
	stretchGuess = 0.5
	bendGuess    = 0.2
	torsionGuess = 0.1
	cartGuess    = 0.5
)

//GuessHessian returns a diagonal model Hessian in the redundant
//representation, with a force constant per primitive set by its kind.
func (R *Redundant) GuessHessian() *mat.SymDense {
	n := len(R.prims)
	hess := mat.NewSymDense(n, nil)
	for i, p := range R.prims {
		switch p.Kind() {
		case Stretch:
			hess.SetSym(i, i, stretchGuess)
		case Bend:
			hess.SetSym(i, i, bendGuess)
		default:
			hess.SetSym(i, i, torsionGuess)
		}
	}
	return hess
}

//GuessHessian returns a scaled unit model Hessian of dimension 3N.
func (C *Cartesian) GuessHessian() *mat.SymDense {
	n := 3 * C.natoms
	hess := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		hess.SetSym(i, i, cartGuess)
	}
	return hess
}
