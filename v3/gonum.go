/*
 * gonum.go, part of gopt.
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

//Package v3 implements a Nx3 matrix of coordinates in 3D space, based on the
//gonum Dense matrix. Within the package it is understood that a "vector" is a
//row of the matrix, i.e. the Cartesian coordinates of one point in space.
package v3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space. The underlying implementation varies.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the gonum Dense matrix underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps a gonum Dense matrix into a Matrix. It panics if
//A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrShape)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NVecs returns the number of vectors in the matrix.
func (F *Matrix) NVecs() int {
	r, _ := F.Dims()
	return r
}

//VecView returns a view of the ith vector of the matrix. Changes in the
//view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//SetMatrix puts the matrix A in the receiver, starting from the ith row
//and jth column of the receiver.
func (F *Matrix) SetMatrix(i, j int, A *Matrix) {
	b := F.RawMatrix()
	ar, ac := A.Dims()
	fc := 3
	if ar+i > F.NVecs() || ac+j > fc {
		panic(ErrShape)
	}
	r := make([]float64, ac)
	for k := 0; k < ar; k++ {
		mat.Row(r, k, A)
		startpoint := fc*(k+i) + j
		copy(b.Data[startpoint:startpoint+ac], r)
	}
}

//SomeVecs copies the vectors of A with the indexes in clist into the
//receiver, in the given order. The receiver must have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if len(clist) != F.NVecs() {
		panic(ErrShape)
	}
	for k, j := range clist {
		F.SetRow(k, A.RawRowView(j))
	}
}

//SetVecs copies the vectors of the receiver into A, at the rows given
//by clist, in order. It is the inverse of SomeVecs.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if len(clist) != F.NVecs() {
		panic(ErrShape)
	}
	for k, j := range clist {
		A.SetRow(j, F.RawRowView(k))
	}
}

//Flat copies the coordinates of the receiver, row-major, into dst,
//which is allocated if nil. It returns dst.
func (F *Matrix) Flat(dst []float64) []float64 {
	n := F.NVecs()
	if dst == nil {
		dst = make([]float64, 3*n)
	}
	if len(dst) != 3*n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		copy(dst[3*i:3*i+3], F.RawRowView(i))
	}
	return dst
}

//SetFlat sets the coordinates of the receiver from the row-major
//slice data, which must have 3 elements per vector in the receiver.
func (F *Matrix) SetFlat(data []float64) {
	n := F.NVecs()
	if len(data) != 3*n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		F.SetRow(i, data[3*i:3*i+3])
	}
}

//Scale puts in the receiver the matrix A scaled by v. Unlike the
//embedded gonum method, it accepts the receiver itself as A.
func (F *Matrix) Scale(v float64, A *Matrix) {
	F.Dense.Scale(v, A.Dense)
}

//Clone returns a copy of the receiver, with its own backing slice.
func (F *Matrix) Clone() *Matrix {
	ret := Zeros(F.NVecs())
	ret.Copy(F)
	return ret
}

//Cross puts in the receiver the cross product of the first vectors
//of a and b. All three matrices must have at least one vector.
func (F *Matrix) Cross(a, b *Matrix) {
	if F.NVecs() < 1 || a.NVecs() < 1 || b.NVecs() < 1 {
		panic(ErrShape)
	}
	x := a.At(0, 1)*b.At(0, 2) - a.At(0, 2)*b.At(0, 1)
	y := a.At(0, 2)*b.At(0, 0) - a.At(0, 0)*b.At(0, 2)
	z := a.At(0, 0)*b.At(0, 1) - a.At(0, 1)*b.At(0, 0)
	F.Set(0, 0, x)
	F.Set(0, 1, y)
	F.Set(0, 2, z)
}

//Dot returns the dot product of the first vectors of F and B.
func (F *Matrix) Dot(B *Matrix) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		sum += F.At(0, i) * B.At(0, i)
	}
	return sum
}

//Norm returns the Frobenius norm of the receiver. For a single vector
//that is just its Euclidean norm.
func (F *Matrix) Norm() float64 {
	return mat.Norm(F, 2)
}

//Unit puts in the receiver the first vector of A normalized to norm 1.
//It panics if the vector has zero norm.
func (F *Matrix) Unit(A *Matrix) {
	norm := A.VecView(0).Norm()
	if norm == 0 {
		panic(ErrZeroVector)
	}
	F.Scale(1.0/norm, A.View(0, 0, 1, 3))
}

//RMSD returns the raw (unaligned) root mean square deviation between
//F and B.
func (F *Matrix) RMSD(B *Matrix) float64 {
	n := F.NVecs()
	if n != B.NVecs() {
		panic(ErrShape)
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			d := F.At(i, j) - B.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(n))
}

//Error is the error type for the v3 package. It implements the
//Error interface of the parent package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("v3 error: %s", err.message)
}

//Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	ErrShape      = "v3: Inconsistent shape for the given matrices"
	ErrZeroVector = "v3: Vector of zero norm"
)
