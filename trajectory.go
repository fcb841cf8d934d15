/*
 * trajectory.go, part of gopt.
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

package opt

import (
	v3 "github.com/rmera/gopt/v3"
)

//Step is one snapshot in an optimization trajectory: the coordinates
//(a copy, in Bohr) plus the energy and gradient norms at that point.
type Step struct {
	Coords   *v3.Matrix
	Energy   float64
	GradNorm float64
	GradMax  float64
}

//Trajectory is the append-only record of an optimization run. Snapshots
//are never mutated after being appended, so the driver can serialize a
//trajectory while an optimization keeps growing it, as long as it only
//reads up to the Len it observed.
type Trajectory struct {
	steps []*Step
}

//NewTrajectory returns an empty trajectory.
func NewTrajectory() *Trajectory {
	return &Trajectory{steps: make([]*Step, 0, 50)}
}

//Append records a new snapshot. The coordinates are copied.
func (T *Trajectory) Append(coords *v3.Matrix, energy, gradnorm, gradmax float64) {
	T.steps = append(T.steps, &Step{
		Coords:   coords.Clone(),
		Energy:   energy,
		GradNorm: gradnorm,
		GradMax:  gradmax,
	})
}

//Len returns the number of snapshots recorded so far.
func (T *Trajectory) Len() int {
	return len(T.steps)
}

//Step returns the ith snapshot. It panics if i is out of range.
func (T *Trajectory) Step(i int) *Step {
	return T.steps[i]
}

//Last returns the latest snapshot, or nil for an empty trajectory.
func (T *Trajectory) Last() *Step {
	if len(T.steps) == 0 {
		return nil
	}
	return T.steps[len(T.steps)-1]
}

//Energies returns the energy of every snapshot, in order.
func (T *Trajectory) Energies() []float64 {
	ret := make([]float64, len(T.steps))
	for i, v := range T.steps {
		ret[i] = v.Energy
	}
	return ret
}

//GradNorms returns the gradient norm of every snapshot, in order.
func (T *Trajectory) GradNorms() []float64 {
	ret := make([]float64, len(T.steps))
	for i, v := range T.steps {
		ret[i] = v.GradNorm
	}
	return ret
}
