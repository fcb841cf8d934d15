/*
 * layer.go, part of gopt.
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
	opt "github.com/rmera/gopt"
)

//Link describes one covalent bond cut by a layer boundary. The model
//subsystem is saturated with a cap atom placed on the Inner-Outer axis.
type Link struct {
	//Inner is the index, in the full system, of the bonded atom
	//inside the layer. Outer is its partner outside of it.
	Inner, Outer int
	//G sets the position of the cap atom along the cut bond:
	//	cap = (1-G)*inner + G*outer
	//A zero G means "derive from covalent radii", the usual choice.
	G float64
	//Symbol is the element of the cap atom. Empty means hydrogen.
	Symbol string
}

//Layer is one member of an ONIOM-style partition: a subset of the
//atoms of the full system, the calculator that treats this subset at
//this layer's level of theory, and the cut bonds of its boundary.
//
//An empty Atoms slice makes the layer span the same atoms as its
//parent layer, so that it only switches the level of theory for the
//whole parent subsystem.
type Layer struct {
	Name  string
	Atoms []int
	Calc  opt.Calculator
	Links []Link
}

//atomSet returns the layer's atoms as a set.
func atomSet(atoms []int) map[int]bool {
	set := make(map[int]bool, len(atoms))
	for _, i := range atoms {
		set[i] = true
	}
	return set
}

//capFactor returns the position factor for a cap of element capSym
//replacing the inner-outer bond. It follows the common covalent-radii
//prescription g = (r_inner + r_cap) / (r_inner + r_outer).
func capFactor(innerSym, outerSym, capSym string) (float64, error) {
	ri, ok := opt.CovalentRadius(innerSym)
	if !ok {
		return 0, Error{ErrUnknownElement, "", []string{"capFactor"}, true}
	}
	ro, ok := opt.CovalentRadius(outerSym)
	if !ok {
		return 0, Error{ErrUnknownElement, "", []string{"capFactor"}, true}
	}
	rc, ok := opt.CovalentRadius(capSym)
	if !ok {
		return 0, Error{ErrUnknownElement, "", []string{"capFactor"}, true}
	}
	return (ri + rc) / (ri + ro), nil
}
