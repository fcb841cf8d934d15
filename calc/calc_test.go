/*
 * calc_test.go, part of gopt.
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

package calc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

func testGeometry(t *testing.T, coords []float64, symbols ...string) *opt.Geometry {
	t.Helper()
	atoms := make([]*opt.Atom, len(symbols))
	for i, s := range symbols {
		atoms[i] = &opt.Atom{Symbol: s}
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		t.Fatal(err)
	}
	geom, err := opt.NewGeometry(atoms, m)
	if err != nil {
		t.Fatal(err)
	}
	return geom
}

const engradFixture = `#
# Number of atoms
#
 3
#
# The current total energy in Eh
#
    -76.323456789
#
# The current gradient in Eh/bohr
#
       0.000017
      -0.000170
       0.000100
      -0.000300
       0.000250
      -0.000010
       0.000283
      -0.000080
      -0.000090
`

func TestParseEngrad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.engrad")
	if err := os.WriteFile(name, []byte(engradFixture), 0644); err != nil {
		t.Fatal(err)
	}
	energy, grad, err := parseEngrad(name, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(energy-(-76.323456789)) > 1e-12 {
		t.Errorf("wrong energy: %f", energy)
	}
	if grad.NVecs() != 3 {
		t.Fatalf("wrong gradient size: %d", grad.NVecs())
	}
	if math.Abs(grad.At(1, 0)-(-0.000300)) > 1e-12 {
		t.Errorf("wrong gradient element: %g", grad.At(1, 0))
	}
	if math.Abs(grad.At(2, 2)-(-0.000090)) > 1e-12 {
		t.Errorf("wrong gradient element: %g", grad.At(2, 2))
	}
	if _, _, err := parseEngrad(name, 4); err == nil {
		t.Error("expected an error for a wrong atom count")
	}
}

const tmGradientFixture = `$grad
  cycle =      1    SCF energy =     -5.07054444 |dE/dxyz| =  0.027866
    0.00000000000000      0.00000000000000      0.22737828605018      O
    0.00000000000000      1.41420000000000     -0.90951314420071      H
    0.00000000000000     -1.41420000000000     -0.90951314420071      H
   1.7893752320801E-17   6.2281027791195E-17   1.4711242538287E-02
  -1.7893752320801E-17  -9.2582037670663E-03  -7.3556212691436E-03
   0.0000000000000E+00   9.2582037670663E-03  -7.3556212691436E-03
$end
`

func TestParseTMGradient(t *testing.T) {
	name := filepath.Join(t.TempDir(), "gradient")
	if err := os.WriteFile(name, []byte(tmGradientFixture), 0644); err != nil {
		t.Fatal(err)
	}
	energy, grad, err := parseTMGradient(name, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(energy-(-5.07054444)) > 1e-12 {
		t.Errorf("wrong energy: %f", energy)
	}
	if math.Abs(grad.At(0, 2)-1.4711242538287e-02) > 1e-15 {
		t.Errorf("wrong gradient element: %g", grad.At(0, 2))
	}
	if math.Abs(grad.At(2, 1)-9.2582037670663e-03) > 1e-15 {
		t.Errorf("wrong gradient element: %g", grad.At(2, 1))
	}
}

//numGradient builds the numerical gradient of c's energy by central
//differences.
func numGradient(t *testing.T, c opt.Calculator, geom *opt.Geometry, h float64) *v3.Matrix {
	t.Helper()
	grad := v3.Zeros(geom.Len())
	coords := geom.Coords()
	for i := 0; i < geom.Len(); i++ {
		for j := 0; j < 3; j++ {
			orig := coords.At(i, j)
			coords.Set(i, j, orig+h)
			plus, err := c.Evaluate(context.Background(), geom)
			if err != nil {
				t.Fatal(err)
			}
			coords.Set(i, j, orig-h)
			minus, err := c.Evaluate(context.Background(), geom)
			if err != nil {
				t.Fatal(err)
			}
			coords.Set(i, j, orig)
			grad.Set(i, j, (plus.Energy-minus.Energy)/(2*h))
		}
	}
	return grad
}

func TestHarmonic(t *testing.T) {
	ref, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.8, 1.7, 0, -0.5})
	if err != nil {
		t.Fatal(err)
	}
	geom := testGeometry(t, []float64{0.1, -0.2, 0.05, 0.3, 0.1, 2.0, 1.5, 0.2, -0.4}, "O", "H", "H")
	har := &Harmonic{Ref: ref, K: 0.5}
	res, err := har.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	num := numGradient(t, har, geom, 1e-5)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(res.Gradient.At(i, j)-num.At(i, j)) > 1e-7 {
				t.Errorf("analytic and numerical gradients differ at (%d,%d): %g vs %g",
					i, j, res.Gradient.At(i, j), num.At(i, j))
			}
		}
	}
	hess, err := har.EvaluateHessian(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	if hess.SymmetricDim() != 9 {
		t.Fatalf("wrong Hessian size: %d", hess.SymmetricDim())
	}
	for i := 0; i < 9; i++ {
		if math.Abs(hess.At(i, i)-0.5) > 1e-12 {
			t.Errorf("wrong Hessian diagonal at %d: %g", i, hess.At(i, i))
		}
	}
	//at the reference the energy and gradient must vanish
	geom.SetCoords(ref)
	res, err = har.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	if res.Energy != 0 || res.GradNorm() != 0 {
		t.Errorf("nonzero energy or gradient at the reference: %g %g", res.Energy, res.GradNorm())
	}
}

func TestLennardJones(t *testing.T) {
	geom := testGeometry(t, []float64{0, 0, 0, 2.2, 0.1, -0.1, -0.3, 2.5, 0.2}, "Ar", "Ar", "Ar")
	lj := &LennardJones{Sigma: 2.0, Epsilon: 0.01}
	res, err := lj.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	num := numGradient(t, lj, geom, 1e-6)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(res.Gradient.At(i, j)-num.At(i, j)) > 1e-5 {
				t.Errorf("analytic and numerical gradients differ at (%d,%d): %g vs %g",
					i, j, res.Gradient.At(i, j), num.At(i, j))
			}
		}
	}
	//a pair at the minimum distance 2^(1/6)*sigma has energy -epsilon
	rmin := math.Pow(2, 1.0/6.0) * lj.Sigma
	pair := testGeometry(t, []float64{0, 0, 0, rmin, 0, 0}, "Ar", "Ar")
	res, err = lj.Evaluate(context.Background(), pair)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Energy-(-lj.Epsilon)) > 1e-12 {
		t.Errorf("wrong well depth: %g", res.Energy)
	}
	if res.GradNorm() > 1e-10 {
		t.Errorf("nonzero gradient at the minimum: %g", res.GradNorm())
	}
}

//flaky fails its first n evaluations and then delegates to an inner
//calculator.
type flaky struct {
	fails int
	calls int
	inner opt.Calculator
}

func (f *flaky) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, fmt.Errorf("transient failure %d", f.calls)
	}
	return f.inner.Evaluate(ctx, geom)
}

func TestRetry(t *testing.T) {
	geom := testGeometry(t, []float64{0, 0, 0}, "He")
	ref := v3.Zeros(1)
	har := &Harmonic{Ref: ref, K: 1.0}

	f := &flaky{fails: 2, inner: har}
	c := WithRetry(f, RetryPolicy{Attempts: 3})
	if _, err := c.Evaluate(context.Background(), geom); err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if f.calls != 3 {
		t.Errorf("expected 3 calls, got %d", f.calls)
	}

	f = &flaky{fails: 10, inner: har}
	c = WithRetry(f, RetryPolicy{Attempts: 2})
	if _, err := c.Evaluate(context.Background(), geom); err == nil {
		t.Fatal("expected an error after exhausting the attempts")
	}
	if f.calls != 2 {
		t.Errorf("expected 2 calls, got %d", f.calls)
	}

	f = &flaky{fails: 10, inner: har}
	c = WithRetry(f, RetryPolicy{Attempts: 1, Fallback: har})
	res, err := c.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatalf("fallback should have recovered: %v", err)
	}
	if res.Energy != 0 {
		t.Errorf("wrong fallback energy: %g", res.Energy)
	}
}

//plainErrCalc returns a foreign error type, like a user-supplied
//calculator might.
type plainErrCalc struct{}

func (p plainErrCalc) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	return nil, errors.New("something external went wrong")
}

//A cancelled context with a calculator that returns plain errors must
//produce a decorated library error, not a panic.
func TestRetryForeignError(t *testing.T) {
	geom := testGeometry(t, []float64{0, 0, 0}, "He")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := WithRetry(plainErrCalc{}, RetryPolicy{Attempts: 3})
	_, err := c.Evaluate(ctx, geom)
	if err == nil {
		t.Fatal("expected an error under a cancelled context")
	}
	if _, ok := err.(opt.Error); !ok {
		t.Errorf("foreign error not converted to the library's type: %T", err)
	}
}

func TestXTBBuildInput(t *testing.T) {
	dir := t.TempDir()
	geom := testGeometry(t, []float64{0, 0, 0.227, 0, 1.414, -0.909, 0, -1.414, -0.909}, "O", "H", "H")
	x := NewXTBHandle()
	x.SetWorkDir(dir)
	x.SetName("water")
	Q := new(Calc)
	Q.SetDefaults()
	if err := x.BuildInput(geom, Q); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "water.xyz")); err != nil {
		t.Errorf("input geometry not written: %v", err)
	}
}

func TestOrcaBuildInput(t *testing.T) {
	dir := t.TempDir()
	geom := testGeometry(t, []float64{0, 0, 0.227, 0, 1.414, -0.909, 0, -1.414, -0.909}, "O", "H", "H")
	o := NewOrcaHandle()
	o.SetWorkDir(dir)
	o.SetName("water")
	Q := &Calc{Method: "BP86", Basis: "def2-SVP"}
	if err := o.BuildInput(geom, Q); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "water.inp"))
	if err != nil {
		t.Fatal(err)
	}
	input := string(data)
	for _, want := range []string{"! ENGRAD BP86 def2-SVP", "* xyz 0 1"} {
		if !strings.Contains(input, want) {
			t.Errorf("input file lacks %q", want)
		}
	}
}
