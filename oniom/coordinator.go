/*
 * coordinator.go, part of gopt.
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

package oniom

import (
	"context"

	opt "github.com/rmera/gopt"
	"github.com/rmera/gopt/coord"
	"github.com/rmera/gopt/optimize"
	v3 "github.com/rmera/gopt/v3"
)

//Coordinator relaxes a partitioned system with micro-iterations:
//within one macro cycle each shell of atoms is optimized in turn with
//the rest of the system held fixed, outermost shell first, innermost
//layer last. A cycle where every shell reports convergence ends the
//run; otherwise cycles repeat up to a global cap.
type Coordinator struct {
	model *Model
	geom  *opt.Geometry
	set   *optimize.Settings
	//MaxCycles caps the macro cycles. MicroIter caps the optimizer
	//iterations each shell gets within one cycle.
	MaxCycles int
	MicroIter int
	traj      *opt.Trajectory
}

//NewCoordinator returns a coordinator for geom over the given
//partition. settings applies to every shell optimization; nil means
//defaults. The geometry is relaxed in place.
func NewCoordinator(model *Model, geom *opt.Geometry, settings *optimize.Settings) (*Coordinator, error) {
	if model == nil {
		return nil, Error{ErrNoLayers, "", []string{"NewCoordinator"}, true}
	}
	if geom == nil || geom.Len() != model.Natoms() {
		return nil, Error{ErrNilGeometry, "", []string{"NewCoordinator"}, true}
	}
	if settings == nil {
		settings = optimize.NewSettings()
	}
	return &Coordinator{
		model:     model,
		geom:      geom,
		set:       settings,
		MaxCycles: 50,
		MicroIter: 20,
		traj:      opt.NewTrajectory(),
	}, nil
}

//Trajectory returns the full-system snapshots taken after each shell
//relaxation.
func (C *Coordinator) Trajectory() *opt.Trajectory { return C.traj }

//shells returns the disjoint sets of atoms moved per phase: the atoms
//each layer adds over its child, ordered outermost first, with the
//innermost layer's own atoms last. Shells emptied by dummy layers are
//dropped.
func (C *Coordinator) shells() [][]int {
	n := C.model.Layers()
	ret := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		var shell []int
		if i == n-1 {
			shell = C.model.eff[i]
		} else {
			child := atomSet(C.model.eff[i+1])
			for _, a := range C.model.eff[i] {
				if !child[a] {
					shell = append(shell, a)
				}
			}
		}
		if len(shell) > 0 {
			ret = append(ret, shell)
		}
	}
	return ret
}

//shellCalc exposes the full-system combined energy as a function of
//one shell's coordinates, everything else frozen. It satisfies the
//Calculator interface over the shell sub-geometry.
type shellCalc struct {
	model *Model
	full  *opt.Geometry
	shell []int
}

func (S *shellCalc) Evaluate(ctx context.Context, sub *opt.Geometry) (*opt.CalcResult, error) {
	fullCoords := S.full.Coords()
	subCoords := sub.Coords()
	for k, a := range S.shell {
		for j := 0; j < 3; j++ {
			fullCoords.Set(a, j, subCoords.At(k, j))
		}
	}
	res, err := S.model.Evaluate(ctx, S.full)
	if err != nil {
		return nil, err
	}
	grad := v3.Zeros(len(S.shell))
	grad.SomeVecs(res.Gradient, S.shell)
	return &opt.CalcResult{Energy: res.Energy, Gradient: grad}, nil
}

//relaxShell runs a bounded optimization of one shell at fixed
//surroundings. It reports whether the shell converged, along with a
//fresh evaluation of the full system at the shell's final coordinates.
func (C *Coordinator) relaxShell(ctx context.Context, shell []int) (*optimize.Result, *opt.CalcResult, error) {
	sub, err := C.geom.SomeAtoms(shell)
	if err != nil {
		return nil, nil, errDecorate(wrapErr(err, ""), "relaxShell")
	}
	set := *C.set
	set.MaxIter = C.MicroIter
	sc := &shellCalc{model: C.model, full: C.geom, shell: shell}
	O, err := optimize.New(sc, coord.NewCartesian(len(shell)), sub, &set)
	if err != nil {
		return nil, nil, err
	}
	res, err := O.Run(ctx)
	if err != nil {
		return res, nil, err
	}
	//the last accepted displacement is only in the sub-geometry;
	//push it to the full system
	fullCoords := C.geom.Coords()
	subCoords := sub.Coords()
	for k, a := range shell {
		for j := 0; j < 3; j++ {
			fullCoords.Set(a, j, subCoords.At(k, j))
		}
	}
	//the optimizer never evaluates the geometry its last accepted
	//step produced, so the snapshot energy comes from a final
	//evaluation at the synced coordinates
	fres, err := C.model.Evaluate(ctx, C.geom)
	if err != nil {
		return res, nil, err
	}
	return res, fres, nil
}

//Run alternates shell relaxations until every shell's convergence
//criteria are satisfied within the same cycle, or the cycle cap is
//hit. A calculator failure in any shell aborts the whole run.
func (C *Coordinator) Run(ctx context.Context) (*optimize.Result, error) {
	shells := C.shells()
	out := &optimize.Result{
		Status:     optimize.MaxIterExceeded,
		Trajectory: C.traj,
		Geometry:   C.geom,
	}
	for cycle := 0; cycle < C.MaxCycles; cycle++ {
		if err := ctx.Err(); err != nil {
			out.Status = optimize.Failed
			return out, err
		}
		all := true
		for _, shell := range shells {
			res, fres, err := C.relaxShell(ctx, shell)
			if err != nil {
				out.Status = optimize.Failed
				if res != nil {
					out.FinalEnergy = res.FinalEnergy
				}
				return out, errDecorate(wrapErr(err, ""), "Run")
			}
			C.traj.Append(C.geom.Coords(), fres.Energy, fres.GradNorm(), fres.GradMax())
			out.FinalEnergy = fres.Energy
			if res.Status != optimize.Converged {
				all = false
			}
		}
		out.Iterations = cycle + 1
		if all {
			out.Status = optimize.Converged
			return out, nil
		}
	}
	return out, nil
}
