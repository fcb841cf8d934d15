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

package optimize

import (
	"gonum.org/v1/gonum/mat"
)

//hessianGuesser is satisfied by coordinate systems that can seed a
//quasi-Newton run with a model Hessian.
type hessianGuesser interface {
	GuessHessian() *mat.SymDense
}

//pair is one displacement/gradient-change sample for the BFGS update.
type pair struct {
	s []float64
	y []float64
}

//bfgs maintains a quasi-Newton Hessian as a model guess plus a bounded
//history of update pairs. Keeping the history instead of the updated
//matrix lets the Hessian be rebuilt cleanly after the guess changes,
//as happens on a coordinate fallback.
type bfgs struct {
	guess *mat.SymDense
	hist  []pair
	k     int
	cur   *mat.SymDense
}

func newBFGS(guess *mat.SymDense, k int) *bfgs {
	if k < 1 {
		k = 1
	}
	b := &bfgs{guess: guess, k: k}
	b.rebuild()
	return b
}

//reset discards the history and installs a new model guess, e.g.
//after switching coordinate representations.
func (b *bfgs) reset(guess *mat.SymDense) {
	b.guess = guess
	b.hist = b.hist[:0]
	b.rebuild()
}

//update records a displacement s and gradient change y. Pairs with
//non-positive curvature are skipped, which keeps the Hessian positive
//definite for minimizations.
func (b *bfgs) update(s, y []float64) {
	ys := 0.0
	for i := range s {
		ys += y[i] * s[i]
	}
	if ys <= 1e-12 {
		return
	}
	cs := make([]float64, len(s))
	cy := make([]float64, len(y))
	copy(cs, s)
	copy(cy, y)
	b.hist = append(b.hist, pair{s: cs, y: cy})
	if len(b.hist) > b.k {
		b.hist = b.hist[len(b.hist)-b.k:]
	}
	b.rebuild()
}

//rebuild recomputes the Hessian from the guess and the stored pairs.
func (b *bfgs) rebuild() {
	n := b.guess.SymmetricDim()
	h := mat.NewSymDense(n, nil)
	h.CopySym(b.guess)
	for _, p := range b.hist {
		s := mat.NewVecDense(n, p.s)
		y := mat.NewVecDense(n, p.y)
		hs := mat.NewVecDense(n, nil)
		hs.MulVec(h, s)
		shs := mat.Dot(s, hs)
		ys := mat.Dot(y, s)
		if shs > 1e-12 {
			h.SymRankOne(h, -1/shs, hs)
		}
		h.SymRankOne(h, 1/ys, y)
	}
	b.cur = h
}

//hessian returns the current Hessian. The caller must not modify it.
func (b *bfgs) hessian() *mat.SymDense {
	return b.cur
}
