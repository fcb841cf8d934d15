/*
 * interfaces.go, part of gopt.
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
	"context"

	"gonum.org/v1/gonum/mat"
)

//Calculator is anything that can produce the energy of a geometry and
//its gradient. The two obvious implementations are interfaces to
//external quantum chemistry programs and analytic model potentials, both
//in the calc subpackage, but an ONIOM partition also implements it, so
//layers can be composed.
//
//Evaluate may take a long time (an external calculation can run for
//hours) and may be called concurrently on the same value with different
//geometries, so implementations must not share mutable state between
//calls. The context controls cancellation and, for external programs,
//per-invocation timeouts.
type Calculator interface {
	Evaluate(ctx context.Context, geom *Geometry) (*CalcResult, error)
}

//HessianCalculator is implemented by calculators that can also produce
//second derivatives. It is an optional capability: callers must
//type-assert for it.
type HessianCalculator interface {
	Calculator
	EvaluateHessian(ctx context.Context, geom *Geometry) (*mat.SymDense, error)
}

//Error is the interface for errors that all packages in this library
//implement. The Decorate method allows to add and retrieve info from the
//error, without changing its type or wrapping it around something else.
//Each Decorate call appends the name of the calling function, plus, if
//wanted, any relevant extra information. Passing an empty string just
//returns the current decoration without adding to it.
type Error interface {
	Error() string
	Decorate(string) []string
}
