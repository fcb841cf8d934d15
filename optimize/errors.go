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
 *
 */

package optimize

import (
	"fmt"

	opt "github.com/rmera/gopt"
)

//Error is the error type for the optimize package. It implements the
//Error interface of the parent package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("optimize error: %s", err.message)
}

//Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//Critical returns whether the error is critical.
func (err Error) Critical() bool { return err.critical }

//Error messages.
const (
	ErrNilCalculator = "the calculator must not be nil"
	ErrNilSystem     = "the coordinate system must not be nil"
	ErrNilGeometry   = "the geometry must not be nil"
	ErrDimMismatch   = "coordinate system and geometry dimensions do not match"
	ErrNotStepping   = "the optimizer has already finished"
	ErrBadMethod     = "unknown step method"
	ErrEigen         = "eigendecomposition of the augmented Hessian failed"
)

func errDecorate(err error, caller string) error {
	err2 := err.(opt.Error)
	err2.Decorate(caller)
	return err2
}
