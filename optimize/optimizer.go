/*
 * optimizer.go, part of gopt.
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

//Package optimize implements geometry optimization by steepest
//descent, conjugate gradient, and quasi-Newton steps with a trust
//region, in any coordinate representation satisfying coord.System.
package optimize

import (
	"context"
	"io"
	"log"
	"math"

	opt "github.com/rmera/gopt"
	"github.com/rmera/gopt/coord"
)

//Result is the outcome of an optimization run. An unconverged run
//still carries the trajectory accumulated so far, so the caller can
//decide on a restart strategy.
type Result struct {
	Status      Status
	Trajectory  *opt.Trajectory
	Geometry    *opt.Geometry
	FinalEnergy float64
	Iterations  int
}

//Optimizer drives one geometry toward a stationary point. It is not
//safe for concurrent use.
type Optimizer struct {
	calc opt.Calculator
	sys  coord.System
	geom *opt.Geometry
	set  *Settings

	hess   *bfgs
	trust  float64
	status Status
	iter   int
	traj   *opt.Trajectory

	//state of the previous accepted step
	prevGrad  []float64
	lastStep  []float64
	predicted float64
	prevE     float64
	cgDir     []float64
}

//New returns an optimizer for geom, evaluating energies and gradients
//with calc and stepping in the representation sys. settings may be nil,
//in which case the defaults are used. The geometry is updated in place
//as the optimization proceeds.
func New(calc opt.Calculator, sys coord.System, geom *opt.Geometry, settings *Settings) (*Optimizer, error) {
	if calc == nil {
		return nil, Error{ErrNilCalculator, []string{"New"}, true}
	}
	if sys == nil {
		return nil, Error{ErrNilSystem, []string{"New"}, true}
	}
	if geom == nil || geom.Len() == 0 {
		return nil, Error{ErrNilGeometry, []string{"New"}, true}
	}
	if settings == nil {
		settings = NewSettings()
	}
	if settings.Logger == nil {
		settings.Logger = log.New(io.Discard, "", 0)
	}
	if settings.Conv == nil {
		settings.Conv = NormalConv()
	}
	switch settings.Method {
	case RFO, SD, CG:
	default:
		return nil, Error{ErrBadMethod, []string{"New"}, true}
	}
	O := &Optimizer{
		calc:   calc,
		sys:    sys,
		geom:   geom,
		set:    settings,
		trust:  settings.Trust,
		status: Initialized,
		traj:   opt.NewTrajectory(),
	}
	if settings.Method == RFO {
		g, ok := sys.(hessianGuesser)
		if !ok {
			return nil, Error{ErrNilSystem + ": the representation cannot seed a Hessian", []string{"New"}, true}
		}
		O.hess = newBFGS(g.GuessHessian(), settings.HistorySize)
	}
	return O, nil
}

//Status returns the current state of the optimization.
func (O *Optimizer) Status() Status { return O.status }

//Trajectory returns the steps accepted so far.
func (O *Optimizer) Trajectory() *opt.Trajectory { return O.traj }

//Geometry returns the geometry being optimized.
func (O *Optimizer) Geometry() *opt.Geometry { return O.geom }

//Trust returns the current trust radius.
func (O *Optimizer) Trust() float64 { return O.trust }

//fallback abandons the internal representation for plain Cartesians
//after a coordinate breakdown. The quasi-Newton history does not
//carry over; the Hessian restarts from the Cartesian model guess.
func (O *Optimizer) fallback(cause error) {
	O.set.Logger.Printf("coordinate breakdown (%v), falling back to Cartesian representation", cause)
	cart := coord.NewCartesian(O.geom.Len())
	O.sys = cart
	if O.hess != nil {
		O.hess.reset(cart.GuessHessian())
	}
	O.prevGrad = nil
	O.lastStep = nil
	O.cgDir = nil
}

//gradient transforms the Cartesian gradient into the working
//representation, falling back to Cartesians on a breakdown.
func (O *Optimizer) gradient(res *opt.CalcResult) ([]float64, error) {
	gq, err := O.sys.GradientToInternal(O.geom.Coords(), res.Gradient)
	if err != nil {
		if !coord.IsBreakdown(err) {
			return nil, err
		}
		O.fallback(err)
		gq, err = O.sys.GradientToInternal(O.geom.Coords(), res.Gradient)
		if err != nil {
			return nil, err
		}
	}
	return gq, nil
}

//Step performs one macro-iteration: evaluate, update the quasi-Newton
//state, test convergence, and displace the geometry. It returns the
//result of the evaluation at the pre-step geometry. Fatal calculator
//errors set the Failed status.
func (O *Optimizer) Step(ctx context.Context) (*opt.CalcResult, error) {
	if O.status.Terminal() {
		return nil, Error{ErrNotStepping, []string{"Step"}, true}
	}
	res, err := O.calc.Evaluate(ctx, O.geom)
	if err != nil {
		O.status = Failed
		return nil, errDecorate(wrap(err), "Step")
	}
	gq, err := O.gradient(res)
	if err != nil {
		O.status = Failed
		return nil, errDecorate(wrap(err), "Step")
	}
	O.traj.Append(O.geom.Coords(), res.Energy, res.GradNorm(), res.GradMax())

	if O.lastStep != nil && len(O.lastStep) == len(gq) {
		//the step that got us here is now fully known; judge it
		actual := res.Energy - O.prevE
		O.adjustTrust(actual)
		if O.trust < O.set.MinTrust {
			O.status = TrustCollapsed
			return res, Error{"trust radius below the configured minimum without convergence", []string{"Step"}, true}
		}
		if O.hess != nil {
			y := make([]float64, len(gq))
			for i := range y {
				y[i] = gq[i] - O.prevGrad[i]
			}
			O.hess.update(O.lastStep, y)
		}
		if O.set.Conv.Check(gq, O.lastStep) {
			O.status = Converged
			return res, nil
		}
	}

	step, err := O.newStep(gq)
	if err != nil {
		O.status = Failed
		return nil, errDecorate(err, "Step")
	}
	clamp(step, O.trust)
	O.predicted = O.predict(gq, step)

	newCart, err := O.sys.Step(O.geom.Coords(), step)
	if err != nil {
		if !coord.IsBreakdown(err) {
			O.status = Failed
			return nil, errDecorate(wrap(err), "Step")
		}
		O.fallback(err)
		gq, err = O.sys.GradientToInternal(O.geom.Coords(), res.Gradient)
		if err != nil {
			O.status = Failed
			return nil, errDecorate(wrap(err), "Step")
		}
		step, err = O.newStep(gq)
		if err != nil {
			O.status = Failed
			return nil, errDecorate(err, "Step")
		}
		clamp(step, O.trust)
		O.predicted = O.predict(gq, step)
		newCart, err = O.sys.Step(O.geom.Coords(), step)
		if err != nil {
			O.status = Failed
			return nil, errDecorate(wrap(err), "Step")
		}
	}
	O.geom.SetCoords(newCart)
	O.prevGrad = gq
	O.lastStep = step
	O.prevE = res.Energy
	O.iter++
	O.status = Stepping
	return res, nil
}

//newStep generates an unclamped step from the gradient with the
//configured method.
func (O *Optimizer) newStep(gq []float64) ([]float64, error) {
	switch O.set.Method {
	case RFO:
		return rfoStep(O.hess.hessian(), gq, O.set.TS)
	case CG:
		var prev []float64
		if O.cgDir != nil && len(O.cgDir) == len(gq) {
			prev = O.prevGrad
		}
		dir := cgStep(gq, prev, O.cgDir)
		O.cgDir = dir
		step := make([]float64, len(dir))
		copy(step, dir)
		return step, nil
	default:
		return sdStep(gq), nil
	}
}

//predict returns the energy change the quadratic model expects from
//the step.
func (O *Optimizer) predict(gq, step []float64) float64 {
	pred := 0.0
	for i := range step {
		pred += gq[i] * step[i]
	}
	if O.hess != nil {
		h := O.hess.hessian()
		for i := range step {
			for j := range step {
				pred += 0.5 * step[i] * h.At(i, j) * step[j]
			}
		}
	}
	return pred
}

//adjustTrust grows or shrinks the trust radius from the ratio of the
//actual to the predicted energy change of the last step.
func (O *Optimizer) adjustTrust(actual float64) {
	if O.set.TS {
		//near a saddle point uphill moves are expected, so the
		//ratio test does not apply. Keep the radius.
		return
	}
	if actual > 0 {
		//uphill on a minimization: shrink hard
		O.trust /= 4
		return
	}
	if O.predicted >= 0 {
		return
	}
	ratio := actual / O.predicted
	switch {
	case ratio > 0.75:
		if norm(O.lastStep) > 0.9*O.trust && O.trust < O.set.MaxTrust {
			O.trust *= 2
			if O.trust > O.set.MaxTrust {
				O.trust = O.set.MaxTrust
			}
		}
	case ratio < 0.25:
		O.trust /= 4
	}
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

//Run steps until a terminal status or the iteration cap. Exceeding
//the cap is reported in the result's status with a nil error; fatal
//conditions return both the partial result and the error.
func (O *Optimizer) Run(ctx context.Context) (*Result, error) {
	var fatal error
	for O.iter < O.set.MaxIter && !O.status.Terminal() {
		if err := ctx.Err(); err != nil {
			O.status = Failed
			fatal = err
			break
		}
		if _, err := O.Step(ctx); err != nil {
			fatal = err
			break
		}
	}
	if !O.status.Terminal() {
		O.status = MaxIterExceeded
	}
	res := &Result{
		Status:     O.status,
		Trajectory: O.traj,
		Geometry:   O.geom,
		Iterations: O.iter,
	}
	if last := O.traj.Last(); last != nil {
		res.FinalEnergy = last.Energy
	}
	return res, fatal
}

//wrap turns a foreign error into this package's type so it can be
//decorated, leaving library errors untouched.
func wrap(err error) error {
	if _, ok := err.(opt.Error); ok {
		return err
	}
	return Error{err.Error(), nil, true}
}
