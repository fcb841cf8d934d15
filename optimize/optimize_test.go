/*
 * optimize_test.go, part of gopt.
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
	"context"
	"math"
	"testing"

	opt "github.com/rmera/gopt"
	"github.com/rmera/gopt/calc"
	"github.com/rmera/gopt/coord"
	v3 "github.com/rmera/gopt/v3"
)

func geometry(t *testing.T, coords []float64, symbols ...string) *opt.Geometry {
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

func harmonicSetup(t *testing.T) (*opt.Geometry, opt.Calculator) {
	t.Helper()
	ref, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.8, 1.7, 0, -0.5})
	if err != nil {
		t.Fatal(err)
	}
	geom := geometry(t, []float64{0.2, -0.1, 0.1, 0.1, 0.2, 2.0, 1.5, 0.1, -0.3}, "O", "H", "H")
	return geom, &calc.Harmonic{Ref: ref, K: 0.5}
}

func TestHarmonicRFO(t *testing.T) {
	geom, har := harmonicSetup(t)
	set := NewSettings()
	set.Conv = TightConv()
	O, err := New(har, coord.NewCartesian(3), geom, set)
	if err != nil {
		t.Fatal(err)
	}
	res, err := O.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Converged {
		t.Fatalf("expected convergence, got %v after %d iterations", res.Status, res.Iterations)
	}
	if res.Iterations > 15 {
		t.Errorf("too many iterations for a quadratic surface: %d", res.Iterations)
	}
	last := res.Trajectory.Last()
	if last.GradNorm > 1e-4 {
		t.Errorf("final gradient norm too large: %g", last.GradNorm)
	}
	if O.Trust() > set.MaxTrust {
		t.Errorf("trust radius exceeded the maximum: %g", O.Trust())
	}
	if res.FinalEnergy > 1e-6 {
		t.Errorf("final energy too far above the minimum: %g", res.FinalEnergy)
	}
}

func TestHarmonicSDAndCG(t *testing.T) {
	for _, method := range []string{SD, CG} {
		geom, har := harmonicSetup(t)
		set := NewSettings()
		set.Method = method
		set.MaxIter = 500
		set.Conv = LooseConv()
		O, err := New(har, coord.NewCartesian(3), geom, set)
		if err != nil {
			t.Fatal(err)
		}
		res, err := O.Run(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if res.Status != Converged {
			t.Errorf("%s: expected convergence, got %v", method, res.Status)
		}
	}
}

func TestLJDimerRedundant(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2.6, 0, 0}, "Ar", "Ar")
	lj := &calc.LennardJones{Sigma: 2.0, Epsilon: 0.01}
	sys, err := coord.NewRedundantFrom(2, []coord.Primitive{&coord.StretchCoord{I: 0, J: 1}})
	if err != nil {
		t.Fatal(err)
	}
	set := NewSettings()
	set.Conv = TightConv()
	O, err := New(lj, sys, geom, set)
	if err != nil {
		t.Fatal(err)
	}
	res, err := O.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Converged {
		t.Fatalf("expected convergence, got %v", res.Status)
	}
	c := geom.Coords()
	dist := 0.0
	for j := 0; j < 3; j++ {
		d := c.At(0, j) - c.At(1, j)
		dist += d * d
	}
	dist = math.Sqrt(dist)
	rmin := math.Pow(2, 1.0/6.0) * lj.Sigma
	if math.Abs(dist-rmin) > 1e-3 {
		t.Errorf("final distance %g, want %g", dist, rmin)
	}
}

func TestAllFourCriteria(t *testing.T) {
	conv := NormalConv()
	smallGrad := []float64{conv.MaxGrad / 10, 0, 0}
	smallStep := []float64{conv.MaxStep / 10, 0, 0}
	if !conv.Check(smallGrad, smallStep) {
		t.Error("small gradient and step should converge")
	}
	//three of four criteria satisfied must not converge: here the
	//max step component is above threshold while everything else
	//is below
	bigStep := []float64{conv.MaxStep * 1.5, 0, 0}
	if conv.Check(smallGrad, bigStep) {
		t.Error("converged with the max step criterion unsatisfied")
	}
	bigGrad := []float64{conv.MaxGrad * 1.5, 0, 0}
	if conv.Check(bigGrad, smallStep) {
		t.Error("converged with the max gradient criterion unsatisfied")
	}
	//an RMS criterion alone can also block convergence
	n := 100
	rmsGrad := make([]float64, n)
	for i := range rmsGrad {
		rmsGrad[i] = conv.RMSGrad * 1.1
	}
	rmsGrad[0] = conv.MaxGrad * 0.9
	if conv.Check(rmsGrad, smallStep) {
		t.Error("converged with the RMS gradient criterion unsatisfied")
	}
}

func TestStatusTransitions(t *testing.T) {
	geom, har := harmonicSetup(t)
	O, err := New(har, coord.NewCartesian(3), geom, nil)
	if err != nil {
		t.Fatal(err)
	}
	if O.Status() != Initialized {
		t.Fatalf("fresh optimizer should be initialized, got %v", O.Status())
	}
	if _, err := O.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if O.Status() != Stepping {
		t.Fatalf("after one step the status should be stepping, got %v", O.Status())
	}
	if _, err := O.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !O.Status().Terminal() {
		t.Fatalf("after a full run the status should be terminal, got %v", O.Status())
	}
	if _, err := O.Step(context.Background()); err == nil {
		t.Error("stepping a finished optimizer should fail")
	}
}

func TestMaxIterExceeded(t *testing.T) {
	geom, har := harmonicSetup(t)
	set := NewSettings()
	set.MaxIter = 2
	set.Conv = TightConv()
	O, err := New(har, coord.NewCartesian(3), geom, set)
	if err != nil {
		t.Fatal(err)
	}
	res, err := O.Run(context.Background())
	if err != nil {
		t.Fatalf("hitting the cap is not a fatal error: %v", err)
	}
	if res.Status != MaxIterExceeded {
		t.Errorf("expected the iteration cap, got %v", res.Status)
	}
	if res.Trajectory.Len() == 0 {
		t.Error("an unconverged run must still return its trajectory")
	}
}

//risingCalc reports a higher energy on every call, so every step is
//judged uphill and the trust radius shrinks until it collapses.
type risingCalc struct {
	calls int
}

func (r *risingCalc) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	r.calls++
	grad := v3.Zeros(geom.Len())
	for i := 0; i < geom.Len(); i++ {
		for j := 0; j < 3; j++ {
			grad.Set(i, j, 0.05)
		}
	}
	return &opt.CalcResult{Energy: 0.01 * float64(r.calls), Gradient: grad}, nil
}

func TestTrustCollapse(t *testing.T) {
	geom, _ := harmonicSetup(t)
	set := NewSettings()
	O, err := New(&risingCalc{}, coord.NewCartesian(3), geom, set)
	if err != nil {
		t.Fatal(err)
	}
	res, err := O.Run(context.Background())
	if err == nil {
		t.Fatal("a collapsed trust radius must be a fatal error")
	}
	if res.Status != TrustCollapsed {
		t.Fatalf("expected a trust collapse, got %v", res.Status)
	}
	if O.Trust() >= set.MinTrust {
		t.Errorf("terminal trust radius %g is not below the minimum %g", O.Trust(), set.MinTrust)
	}
	if res.Trajectory == nil || res.Trajectory.Len() == 0 {
		t.Error("a collapsed run must still return its trajectory")
	}
}

type failingCalc struct{}

func (f failingCalc) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	return nil, calc.Error{}
}

func TestCalculatorFailureIsFatal(t *testing.T) {
	geom, _ := harmonicSetup(t)
	O, err := New(failingCalc{}, coord.NewCartesian(3), geom, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := O.Run(context.Background())
	if err == nil {
		t.Fatal("expected a fatal error from the calculator")
	}
	if res.Status != Failed {
		t.Errorf("expected the failed status, got %v", res.Status)
	}
}
