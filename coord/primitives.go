/*
 * primitives.go, part of gopt.
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
	"math"

	v3 "github.com/rmera/gopt/v3"
)

//Kind identifies the type of a primitive internal coordinate.
type Kind int

const (
	Stretch Kind = iota
	Bend
	Torsion
)

func (k Kind) String() string {
	switch k {
	case Stretch:
		return "stretch"
	case Bend:
		return "bend"
	case Torsion:
		return "torsion"
	}
	return "unknown"
}

//Primitive is one internal coordinate: a function of some atoms'
//Cartesian positions, together with its analytic derivatives, which
//form one row of the Wilson B matrix.
type Primitive interface {
	Kind() Kind
	//Atoms returns the indexes of the atoms involved.
	Atoms() []int
	//Value returns the value of the coordinate at cart, in Bohr for
	//stretches and radians for angles.
	Value(cart *v3.Matrix) (float64, error)
	//Row writes the derivatives of the coordinate with respect to every
	//Cartesian component into dst, which must have 3N elements, N being
	//the number of atoms in cart. Elements for uninvolved atoms are set
	//to zero.
	Row(dst []float64, cart *v3.Matrix) error
}

//small helpers on coordinate triples

func triple(cart *v3.Matrix, i int) [3]float64 {
	return [3]float64{cart.At(i, 0), cart.At(i, 1), cart.At(i, 2)}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(a [3]float64) float64 {
	return math.Sqrt(dot3(a, a))
}

func scale3(a [3]float64, f float64) [3]float64 {
	return [3]float64{a[0] * f, a[1] * f, a[2] * f}
}

func setRow(dst []float64, atom int, v [3]float64) {
	dst[3*atom] = v[0]
	dst[3*atom+1] = v[1]
	dst[3*atom+2] = v[2]
}

func zeroRow(dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
}

//StretchCoord is the distance between two atoms.
type StretchCoord struct {
	I, J int
}

func (S *StretchCoord) Kind() Kind   { return Stretch }
func (S *StretchCoord) Atoms() []int { return []int{S.I, S.J} }

func (S *StretchCoord) Value(cart *v3.Matrix) (float64, error) {
	r := norm3(sub3(triple(cart, S.I), triple(cart, S.J)))
	if r < 1e-10 {
		return 0, Error{ErrZeroDistance, []string{"StretchCoord.Value"}, true, true}
	}
	return r, nil
}

func (S *StretchCoord) Row(dst []float64, cart *v3.Matrix) error {
	zeroRow(dst)
	u := sub3(triple(cart, S.I), triple(cart, S.J))
	r := norm3(u)
	if r < 1e-10 {
		return Error{ErrZeroDistance, []string{"StretchCoord.Row"}, true, true}
	}
	u = scale3(u, 1/r)
	setRow(dst, S.I, u)
	setRow(dst, S.J, scale3(u, -1))
	return nil
}

//BendCoord is the angle I-J-K, with J at the vertex.
type BendCoord struct {
	I, J, K int
}

func (B *BendCoord) Kind() Kind   { return Bend }
func (B *BendCoord) Atoms() []int { return []int{B.I, B.J, B.K} }

func (B *BendCoord) Value(cart *v3.Matrix) (float64, error) {
	u := sub3(triple(cart, B.I), triple(cart, B.J))
	v := sub3(triple(cart, B.K), triple(cart, B.J))
	ru, rv := norm3(u), norm3(v)
	if ru < 1e-10 || rv < 1e-10 {
		return 0, Error{ErrZeroDistance, []string{"BendCoord.Value"}, true, true}
	}
	cos := dot3(u, v) / (ru * rv)
	//clamp against roundoff
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos), nil
}

func (B *BendCoord) Row(dst []float64, cart *v3.Matrix) error {
	zeroRow(dst)
	u := sub3(triple(cart, B.I), triple(cart, B.J))
	v := sub3(triple(cart, B.K), triple(cart, B.J))
	ru, rv := norm3(u), norm3(v)
	if ru < 1e-10 || rv < 1e-10 {
		return Error{ErrZeroDistance, []string{"BendCoord.Row"}, true, true}
	}
	uh := scale3(u, 1/ru)
	vh := scale3(v, 1/rv)
	cos := dot3(uh, vh)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	sin := math.Sqrt(1 - cos*cos)
	if sin < 1e-6 {
		return Error{ErrLinearAngle, []string{"BendCoord.Row"}, true, true}
	}
	var di, dk [3]float64
	for x := 0; x < 3; x++ {
		di[x] = (cos*uh[x] - vh[x]) / (ru * sin)
		dk[x] = (cos*vh[x] - uh[x]) / (rv * sin)
	}
	setRow(dst, B.I, di)
	setRow(dst, B.K, dk)
	setRow(dst, B.J, [3]float64{-di[0] - dk[0], -di[1] - dk[1], -di[2] - dk[2]})
	return nil
}

//TorsionCoord is the dihedral angle I-J-K-L around the J-K bond, in
//(-pi, pi].
type TorsionCoord struct {
	I, J, K, L int
}

func (T *TorsionCoord) Kind() Kind   { return Torsion }
func (T *TorsionCoord) Atoms() []int { return []int{T.I, T.J, T.K, T.L} }

func (T *TorsionCoord) Value(cart *v3.Matrix) (float64, error) {
	b1 := sub3(triple(cart, T.J), triple(cart, T.I))
	b2 := sub3(triple(cart, T.K), triple(cart, T.J))
	b3 := sub3(triple(cart, T.L), triple(cart, T.K))
	n1 := cross3(b1, b2)
	n2 := cross3(b2, b3)
	rb2 := norm3(b2)
	if norm3(n1) < 1e-10 || norm3(n2) < 1e-10 {
		return 0, Error{ErrLinearAngle, []string{"TorsionCoord.Value"}, true, true}
	}
	return math.Atan2(rb2*dot3(b1, n2), dot3(n1, n2)), nil
}

//The derivative expressions follow van Schaik et al., J Mol Biol 234, 751 (1993).
func (T *TorsionCoord) Row(dst []float64, cart *v3.Matrix) error {
	zeroRow(dst)
	b1 := sub3(triple(cart, T.J), triple(cart, T.I))
	b2 := sub3(triple(cart, T.K), triple(cart, T.J))
	b3 := sub3(triple(cart, T.L), triple(cart, T.K))
	n1 := cross3(b1, b2)
	n2 := cross3(b2, b3)
	rb2 := norm3(b2)
	n1sq := dot3(n1, n1)
	n2sq := dot3(n2, n2)
	if n1sq < 1e-20 || n2sq < 1e-20 || rb2 < 1e-10 {
		return Error{ErrLinearAngle, []string{"TorsionCoord.Row"}, true, true}
	}
	di := scale3(n1, -rb2/n1sq)
	dl := scale3(n2, rb2/n2sq)
	t1 := dot3(b1, b2) / (rb2 * rb2)
	t2 := dot3(b3, b2) / (rb2 * rb2)
	var dj, dk [3]float64
	for x := 0; x < 3; x++ {
		dj[x] = -(t1+1)*di[x] + t2*dl[x]
		dk[x] = -(t2+1)*dl[x] + t1*di[x]
	}
	setRow(dst, T.I, di)
	setRow(dst, T.J, dj)
	setRow(dst, T.K, dk)
	setRow(dst, T.L, dl)
	return nil
}
