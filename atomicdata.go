/*
 * atomicdata.go, part of gopt.
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

//A map for assigning mass to elements: the common "bio-elements" plus
//the noble gases, the lighter transition metals and the heavy elements
//that show up in organometallic work.
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"B":  10.81,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
	"Li": 6.94,
	"Al": 26.98,
	"Ni": 58.69,
	"He": 4.0026,
	"Ne": 20.18,
	"Ar": 39.95,
	"Kr": 83.80,
	"Xe": 131.29,
	"Sc": 44.96,
	"Ti": 47.87,
	"V":  50.94,
	"Ga": 69.72,
	"Ge": 72.63,
	"As": 74.92,
	"Mo": 95.95,
	"Ru": 101.07,
	"Rh": 102.91,
	"Pd": 106.42,
	"Ag": 107.87,
	"Cd": 112.41,
	"Sn": 118.71,
	"Sb": 121.76,
	"Te": 127.60,
	"W":  183.84,
	"Ir": 192.22,
	"Pt": 195.08,
	"Au": 196.97,
	"Hg": 200.59,
	"Pb": 207.2,
}

//A map for assigning covalent radii to elements, in Angstroms.
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J), covering the
//same elements as the mass table.
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31 I altered this one. Since H always has only one bond, it doesn't matter if I set a longer radius, the extra bonds will get eliminated later.
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"B":  0.84,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
	"Li": 1.28,
	"Al": 1.21,
	"Ni": 1.24,
	"He": 0.28,
	"Ne": 0.58,
	"Ar": 1.06,
	"Kr": 1.16,
	"Xe": 1.40,
	"Sc": 1.70,
	"Ti": 1.60,
	"V":  1.53,
	"Ga": 1.22,
	"Ge": 1.20,
	"As": 1.19,
	"Mo": 1.54,
	"Ru": 1.46,
	"Rh": 1.42,
	"Pd": 1.39,
	"Ag": 1.45,
	"Cd": 1.44,
	"Sn": 1.39,
	"Sb": 1.39,
	"Te": 1.38,
	"W":  1.62,
	"Ir": 1.41,
	"Pt": 1.36,
	"Au": 1.36,
	"Hg": 1.32,
	"Pb": 1.46,
}

//Mass returns the mass of an element, in Daltons, and whether the
//element is in the internal table.
func Mass(symbol string) (float64, bool) {
	m, ok := symbolMass[symbol]
	return m, ok
}

//CovalentRadius returns the covalent radius of an element, in Bohr, and
//whether the element is in the internal table.
func CovalentRadius(symbol string) (float64, bool) {
	r, ok := symbolCovrad[symbol]
	return r * A2Bohr, ok
}
