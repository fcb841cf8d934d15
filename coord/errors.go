/*
 * errors.go, part of gopt.
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

package coord

import "fmt"

//Error is the error type for coordinate representations. It implements
//the Error interface of the parent package. Errors flagged as
//breakdowns mean the representation itself failed at the current
//geometry (singular angle, non-convergent back-transformation); callers
//can recover from those by switching to Cartesians.
type Error struct {
	message   string
	deco      []string
	critical  bool
	breakdown bool
}

func (err Error) Error() string {
	return fmt.Sprintf("coord error: %s", err.message)
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

//Breakdown returns true if the error is a coordinate breakdown,
//recoverable by falling back to the Cartesian representation.
func (err Error) Breakdown() bool { return err.breakdown }

//IsBreakdown returns whether err is a coordinate breakdown.
func IsBreakdown(err error) bool {
	type breakdowner interface {
		Breakdown() bool
	}
	b, ok := err.(breakdowner)
	return ok && b.Breakdown()
}

const (
	ErrShape         = "Inconsistent dimensions for the representation"
	ErrBackTransform = "Back-transformation from internal coordinates did not converge"
	ErrLinearAngle   = "Angle too close to linear for a stable B-matrix row"
	ErrZeroDistance  = "Coincident atoms give a singular coordinate"
	ErrNoElement     = "Element not present in the covalent radii table"
	ErrFewAtoms      = "At least two atoms are needed for internal coordinates"
	ErrSingularG     = "Singular G matrix in generalized inverse"
)
