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

package oniom

import (
	"fmt"

	opt "github.com/rmera/gopt"
)

//Error is the error type for the oniom package. It implements the
//Error interface of the parent package. Partition errors are raised at
//construction time, before any calculator has been invoked.
type Error struct {
	message  string
	layer    string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.layer != "" {
		return fmt.Sprintf("oniom error: %s (layer %s)", err.message, err.layer)
	}
	return fmt.Sprintf("oniom error: %s", err.message)
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

//Layer returns the name of the layer the error refers to, if any.
func (err Error) Layer() string { return err.layer }

//Error messages.
const (
	ErrNoLayers       = "a partition needs at least one layer"
	ErrNotNested      = "layer atom sets are not strictly nested"
	ErrAtomRange      = "layer atom index out of range"
	ErrDuplicateAtom  = "duplicate atom index within a layer"
	ErrNilCalculator  = "every layer needs a calculator"
	ErrBadLink        = "link does not cross this layer's boundary"
	ErrUnknownElement = "unknown element for link atom placement"
	ErrNilGeometry    = "the geometry must not be nil"
)

func errDecorate(err error, caller string) error {
	err2 := err.(opt.Error)
	err2.Decorate(caller)
	return err2
}
