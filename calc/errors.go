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

package calc

import "fmt"

//Names of the programs this package can drive, for error reporting.
const (
	XTB  = "XTB"
	Orca = "Orca"
)

//Error is the error type for calculator failures. It implements the
//Error interface of the parent package. A calculator failure is fatal
//for the run that triggered it unless an explicit retry policy is
//in place; there is no silent continuation with stale data.
type Error struct {
	message    string
	program    string
	inputname  string
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	if err.additional != "" {
		return fmt.Sprintf("calc error: %s. Program: %s, input: %s (%s)", err.message, err.program, err.inputname, err.additional)
	}
	return fmt.Sprintf("calc error: %s. Program: %s, input: %s", err.message, err.program, err.inputname)
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

//Program returns the name of the external program associated to the
//error, or an empty string for analytic calculators.
func (err Error) Program() string { return err.program }

const (
	ErrNotRunning      = "Couldn't run the external program"
	ErrTimeout         = "External program exceeded its configured timeout"
	ErrCantInput       = "Couldn't build the input for the external program"
	ErrNoEnergy        = "Couldn't read the energy from the program's output"
	ErrNoGradient      = "Couldn't read the gradient from the program's output"
	ErrMissingData     = "Missing geometry or calculation options"
	ErrProbableProblem = "Probable problem in calculation"
	ErrRetriesExceeded = "All retry attempts failed"
)
