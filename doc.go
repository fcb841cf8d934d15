/*
 * doc.go, part of gopt.
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

/*
Package opt provides the basic structures for molecular geometry
optimization: atoms, geometries, calculation results, trajectories and the
interfaces that connect them to energy/gradient calculators.

All quantities in this library are in atomic units: distances in Bohr,
energies in Hartree and gradients in Hartree/Bohr, unless a function
explicitly says otherwise (the XYZ file functions, which use the
conventional Angstroms, are the main exception).

The actual work is done by the subpackages: coord implements coordinate
systems (Cartesian and redundant internals), calc implements calculators,
both interfaces to external quantum chemistry programs and analytic test
potentials, optimize implements the optimization algorithms and oniom
implements multi-layer partitioned optimization.
*/
package opt
