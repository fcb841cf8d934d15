/*
 * status.go, part of gopt.
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

//Status is the state of an optimization. It starts at Initialized,
//moves to Stepping on the first step, and ends in one of the terminal
//states. A terminal status is never left.
type Status int

const (
	Initialized Status = iota
	Stepping
	Converged
	MaxIterExceeded
	TrustCollapsed
	Failed
)

func (s Status) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Converged:
		return "converged"
	case MaxIterExceeded:
		return "maximum iterations exceeded"
	case TrustCollapsed:
		return "trust radius collapsed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

//Terminal returns whether the status is an end state.
func (s Status) Terminal() bool {
	return s == Converged || s == MaxIterExceeded || s == TrustCollapsed || s == Failed
}
