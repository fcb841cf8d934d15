/*
 * oniom_test.go, part of gopt.
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

package oniom

import (
	"context"
	"math"
	"sync"
	"testing"

	opt "github.com/rmera/gopt"
	"github.com/rmera/gopt/calc"
	"github.com/rmera/gopt/optimize"
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

//counting wraps a calculator and counts its invocations.
type counting struct {
	inner opt.Calculator
	mu    sync.Mutex
	calls int
}

func (c *counting) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Evaluate(ctx, geom)
}

//recording remembers the last geometry it was asked to evaluate.
type recording struct {
	inner opt.Calculator
	mu    sync.Mutex
	last  *opt.Geometry
}

func (r *recording) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	r.mu.Lock()
	r.last = geom.Copy()
	r.mu.Unlock()
	return r.inner.Evaluate(ctx, geom)
}

func TestValidationBeforeEvaluation(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2, 0, 0, 4, 0, 0}, "C", "C", "C")
	lj := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	c := &counting{inner: lj}
	//the inner layer is not a subset of the outer one
	_, err := NewModel(geom,
		&Layer{Name: "real", Calc: c},
		&Layer{Name: "model", Atoms: []int{0, 1}, Calc: c},
		&Layer{Name: "inner", Atoms: []int{1, 2}, Calc: c},
	)
	if err == nil {
		t.Fatal("expected a partition error for non-nested layers")
	}
	if c.calls != 0 {
		t.Errorf("validation must not invoke any calculator, got %d calls", c.calls)
	}
	//out-of-range and duplicate indexes are also construction errors
	if _, err := NewModel(geom, &Layer{Name: "real", Calc: c}, &Layer{Atoms: []int{0, 7}, Calc: c}); err == nil {
		t.Error("expected an error for an out-of-range atom index")
	}
	if _, err := NewModel(geom, &Layer{Name: "real", Calc: c}, &Layer{Atoms: []int{0, 0}, Calc: c}); err == nil {
		t.Error("expected an error for a duplicate atom index")
	}
	if _, err := NewModel(geom, &Layer{Name: "real", Atoms: []int{0, 1}, Calc: c}); err == nil {
		t.Error("expected an error for an outermost layer not spanning the system")
	}
	if c.calls != 0 {
		t.Errorf("validation must not invoke any calculator, got %d calls", c.calls)
	}
}

func TestAdditivityCancellation(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2.2, 0.3, -0.1, -0.4, 2.4, 0.2, 4.4, 0.1, 0.3}, "Ar", "Ar", "Ar", "Ar")
	lj := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	//the same calculator at both levels of the inner layer: the
	//correction terms must cancel exactly
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: lj},
		&Layer{Name: "model", Atoms: []int{0, 1}, Calc: lj},
	)
	if err != nil {
		t.Fatal(err)
	}
	combined, err := model.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := lj.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(combined.Energy-plain.Energy) > 1e-14 {
		t.Errorf("combined energy %g differs from the plain one %g", combined.Energy, plain.Energy)
	}
	for i := 0; i < geom.Len(); i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(combined.Gradient.At(i, j)-plain.Gradient.At(i, j)) > 1e-14 {
				t.Errorf("combined gradient differs at (%d,%d)", i, j)
			}
		}
	}
}

func TestRealDummyLayer(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2.2, 0, 0}, "Ar", "Ar")
	low := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	high := &calc.LennardJones{Sigma: 2, Epsilon: 0.02}
	//an empty-subset layer switches the level of theory for the
	//whole system: the low-level terms cancel and only the
	//high-level energy remains
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: low},
		&Layer{Name: "better", Calc: high},
	)
	if err != nil {
		t.Fatal(err)
	}
	combined, err := model.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	want, err := high.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(combined.Energy-want.Energy) > 1e-14 {
		t.Errorf("dummy layer energy %g, want the high-level energy %g", combined.Energy, want.Energy)
	}
}

func TestLinkAtomPlacement(t *testing.T) {
	//a two-carbon "bond" cut by the boundary, with an explicit cap
	//factor so the expected position is exact
	geom := geometry(t, []float64{0, 0, 0, 2, 0, 0, 4, 0, 0}, "C", "C", "C")
	lj := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	rec := &recording{inner: lj}
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: lj},
		&Layer{Name: "model", Atoms: []int{0}, Calc: rec,
			Links: []Link{{Inner: 0, Outer: 1, G: 0.5}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model.Evaluate(context.Background(), geom); err != nil {
		t.Fatal(err)
	}
	sub := rec.last
	if sub == nil {
		t.Fatal("the model calculator was never invoked")
	}
	if sub.Len() != 2 {
		t.Fatalf("model subsystem should have the layer atom plus one cap, got %d atoms", sub.Len())
	}
	if sub.Atom(1).Symbol != "H" {
		t.Errorf("default cap element should be hydrogen, got %s", sub.Atom(1).Symbol)
	}
	//g=0.5 puts the cap halfway along the cut bond
	if math.Abs(sub.Coords().At(1, 0)-1.0) > 1e-12 {
		t.Errorf("cap atom at x=%g, want 1.0", sub.Coords().At(1, 0))
	}
	//an automatic factor must land strictly between the two atoms
	model2, err := NewModel(geom,
		&Layer{Name: "real", Calc: lj},
		&Layer{Name: "model", Atoms: []int{0}, Calc: rec,
			Links: []Link{{Inner: 0, Outer: 1}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model2.Evaluate(context.Background(), geom); err != nil {
		t.Fatal(err)
	}
	x := rec.last.Coords().At(1, 0)
	if x <= 0 || x >= 2 {
		t.Errorf("automatic cap position %g outside the cut bond", x)
	}
}

//capGrad puts a constant gradient on the cap atom only, to expose the
//redistribution rule.
type capGrad struct {
	natoms int //atoms before the cap
}

func (c capGrad) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	grad := v3.Zeros(geom.Len())
	if geom.Len() > c.natoms {
		grad.Set(c.natoms, 0, 1.0)
	}
	return &opt.CalcResult{Energy: 0, Gradient: grad}, nil
}

//zero returns nothing at all.
type zero struct{}

func (zero) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	return &opt.CalcResult{Energy: 0, Gradient: v3.Zeros(geom.Len())}, nil
}

func TestLinkForceRedistribution(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2, 0, 0}, "C", "C")
	g := 0.3
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: zero{}},
		&Layer{Name: "model", Atoms: []int{0}, Calc: capGrad{natoms: 1},
			Links: []Link{{Inner: 0, Outer: 1, G: g}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	res, err := model.Evaluate(context.Background(), geom)
	if err != nil {
		t.Fatal(err)
	}
	//the low-level term of the model subsystem is zero, so the full
	//gradient is just the redistributed cap contribution
	if math.Abs(res.Gradient.At(0, 0)-(1-g)) > 1e-12 {
		t.Errorf("inner atom got %g of the cap gradient, want %g", res.Gradient.At(0, 0), 1-g)
	}
	if math.Abs(res.Gradient.At(1, 0)-g) > 1e-12 {
		t.Errorf("outer atom got %g of the cap gradient, want %g", res.Gradient.At(1, 0), g)
	}
}

type failing struct{}

func (failing) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	return nil, calc.Error{}
}

func TestComponentFailureIsFatal(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2.2, 0, 0}, "Ar", "Ar")
	lj := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: lj},
		&Layer{Name: "model", Atoms: []int{0}, Calc: failing{}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := model.Evaluate(context.Background(), geom); err == nil {
		t.Fatal("a component failure must fail the whole evaluation")
	}
}

//tagHarmonic tethers atoms to per-tag reference positions, so it can
//evaluate any subsystem whose atoms carry tags. Untagged atoms are
//free.
type tagHarmonic struct {
	refs map[int][3]float64
	k    float64
}

func (h *tagHarmonic) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	c := geom.Coords()
	grad := v3.Zeros(geom.Len())
	energy := 0.0
	for i := 0; i < geom.Len(); i++ {
		ref, ok := h.refs[geom.Atom(i).Tag]
		if !ok {
			continue
		}
		for j := 0; j < 3; j++ {
			d := c.At(i, j) - ref[j]
			energy += 0.5 * h.k * d * d
			grad.Set(i, j, h.k*d)
		}
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}

func TestCoordinatorRelaxes(t *testing.T) {
	refs := map[int][3]float64{
		1: {0, 0, 0},
		2: {0, 0, 2.0},
		3: {2.0, 0, 0},
		4: {0, 2.0, 0},
	}
	har := &tagHarmonic{refs: refs, k: 0.5}
	atoms := make([]*opt.Atom, 4)
	for i := range atoms {
		atoms[i] = &opt.Atom{Symbol: "C", Tag: i + 1}
	}
	start, err := v3.NewMatrix([]float64{0.2, -0.1, 0.1, 0.1, 0.1, 2.2, 1.8, 0.1, -0.2, 0.1, 1.8, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	geom, err := opt.NewGeometry(atoms, start)
	if err != nil {
		t.Fatal(err)
	}
	//identical calculators at both levels: the partitioned surface
	//is exactly the plain spring one, so the coordinator must find
	//its minimum
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: har},
		&Layer{Name: "model", Atoms: []int{0, 1}, Calc: har},
	)
	if err != nil {
		t.Fatal(err)
	}
	set := optimize.NewSettings()
	C, err := NewCoordinator(model, geom, set)
	if err != nil {
		t.Fatal(err)
	}
	res, err := C.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != optimize.Converged {
		t.Fatalf("expected convergence, got %v after %d cycles", res.Status, res.Iterations)
	}
	c := geom.Coords()
	for i := 0; i < geom.Len(); i++ {
		want := refs[i+1]
		for j := 0; j < 3; j++ {
			if math.Abs(c.At(i, j)-want[j]) > 1e-2 {
				t.Errorf("atom %d coordinate %d at %g, want %g", i, j, c.At(i, j), want[j])
			}
		}
	}
	if res.Trajectory.Len() == 0 {
		t.Error("the coordinator should have recorded snapshots")
	}
	//every snapshot must pair its coordinates with the energy of
	//those same coordinates
	for i := 0; i < res.Trajectory.Len(); i++ {
		step := res.Trajectory.Step(i)
		var e float64
		for a := 0; a < geom.Len(); a++ {
			ref := refs[a+1]
			for j := 0; j < 3; j++ {
				d := step.Coords.At(a, j) - ref[j]
				e += 0.5 * har.k * d * d
			}
		}
		if math.Abs(step.Energy-e) > 1e-10 {
			t.Errorf("snapshot %d: recorded energy %g, its coordinates give %g", i, step.Energy, e)
		}
	}
}

func TestCoordinatorFailurePropagates(t *testing.T) {
	geom := geometry(t, []float64{0, 0, 0, 2.2, 0, 0}, "Ar", "Ar")
	lj := &calc.LennardJones{Sigma: 2, Epsilon: 0.01}
	model, err := NewModel(geom,
		&Layer{Name: "real", Calc: lj},
		&Layer{Name: "model", Atoms: []int{0}, Calc: failing{}},
	)
	if err != nil {
		t.Fatal(err)
	}
	C, err := NewCoordinator(model, geom, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := C.Run(context.Background())
	if err == nil {
		t.Fatal("an inner calculator failure must abort the coordinated run")
	}
	if res.Status != optimize.Failed {
		t.Errorf("expected the failed status, got %v", res.Status)
	}
}
