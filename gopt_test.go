/*
 * gopt_test.go, part of gopt.
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

package opt

import (
	"bytes"
	"math"
	"strings"
	"testing"

	v3 "github.com/rmera/gopt/v3"
)

func water(t *testing.T) *Geometry {
	t.Helper()
	atoms := []*Atom{{Symbol: "O"}, {Symbol: "H"}, {Symbol: "H"}}
	coords, err := v3.NewMatrix([]float64{
		0, 0, 0.227,
		0, 1.414, -0.909,
		0, -1.414, -0.909,
	})
	if err != nil {
		t.Fatal(err)
	}
	geom, err := NewGeometry(atoms, coords)
	if err != nil {
		t.Fatal(err)
	}
	return geom
}

func TestXYZRoundTrip(t *testing.T) {
	geom := water(t)
	var buf bytes.Buffer
	if err := XYZWrite(&buf, geom, "a water molecule"); err != nil {
		t.Fatal(err)
	}
	read, comment, err := XYZRead(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if comment != "a water molecule" {
		t.Errorf("wrong comment: %q", comment)
	}
	if read.Len() != geom.Len() {
		t.Fatalf("read %d atoms, want %d", read.Len(), geom.Len())
	}
	for i := 0; i < geom.Len(); i++ {
		if read.Atom(i).Symbol != geom.Atom(i).Symbol {
			t.Errorf("atom %d symbol %s, want %s", i, read.Atom(i).Symbol, geom.Atom(i).Symbol)
		}
		for j := 0; j < 3; j++ {
			if math.Abs(read.Coords().At(i, j)-geom.Coords().At(i, j)) > 1e-5 {
				t.Errorf("coordinate (%d,%d) off after the round trip", i, j)
			}
		}
	}
}

func TestXYZReadErrors(t *testing.T) {
	bad := []string{
		"",
		"notanumber\ncomment\n",
		"3\ncomment\nO 0 0 0\n", //truncated
		"1\ncomment\nO 0 zero 0\n",
	}
	for _, b := range bad {
		if _, _, err := XYZRead(strings.NewReader(b)); err == nil {
			t.Errorf("expected an error for %q", b)
		}
	}
}

func TestGeometry(t *testing.T) {
	geom := water(t)
	if geom.Multi() != 1 {
		t.Errorf("default multiplicity should be 1, got %d", geom.Multi())
	}
	geom.SetCharge(-1)
	geom.SetMulti(2)
	cp := geom.Copy()
	if cp.Charge() != -1 || cp.Multi() != 2 {
		t.Error("copy lost charge or multiplicity")
	}
	//a copy must not share coordinates
	cp.Coords().Set(0, 0, 42)
	if geom.Coords().At(0, 0) == 42 {
		t.Error("copy shares coordinates with the original")
	}
	sub, err := geom.SomeAtoms([]int{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 2 || sub.Atom(0).Symbol != "H" || sub.Atom(1).Symbol != "O" {
		t.Error("SomeAtoms did not keep the requested order")
	}
	if _, err := geom.SomeAtoms([]int{5}); err == nil {
		t.Error("an out-of-range index should be an error")
	}
}

func TestElementData(t *testing.T) {
	m, ok := Mass("O")
	if !ok || math.Abs(m-15.9994) > 0.01 {
		t.Errorf("wrong oxygen mass: %f", m)
	}
	if _, ok := Mass("Xx"); ok {
		t.Error("an unknown element should not have a mass")
	}
	rO, ok := CovalentRadius("O")
	if !ok {
		t.Fatal("no covalent radius for oxygen")
	}
	rH, _ := CovalentRadius("H")
	//radii are in Bohr: the O-H sum must be around the typical bond
	//distance of ~1.8 Bohr
	if s := rO + rH; s < 1.5 || s > 2.5 {
		t.Errorf("O+H covalent radii sum %f Bohr looks wrong", s)
	}
	masses, err := water(t).Masses()
	if err != nil {
		t.Fatal(err)
	}
	if len(masses) != 3 || masses[1] != masses[2] {
		t.Error("wrong masses for water")
	}
	//the tables go beyond the bio-elements, and both must cover the
	//same symbols
	for _, sym := range []string{"He", "Ar", "Ti", "Pd", "Au", "Pb"} {
		m, ok := Mass(sym)
		if !ok || m <= 0 {
			t.Errorf("no mass for %s", sym)
		}
		r, ok := CovalentRadius(sym)
		if !ok || r <= 0 {
			t.Errorf("no covalent radius for %s", sym)
		}
	}
}

func TestTrajectory(t *testing.T) {
	tr := NewTrajectory()
	if tr.Last() != nil {
		t.Error("an empty trajectory has no last step")
	}
	c := v3.Zeros(2)
	tr.Append(c, -1.0, 0.1, 0.05)
	c.Set(0, 0, 9.0) //must not affect the stored step
	tr.Append(c, -1.5, 0.05, 0.02)
	if tr.Len() != 2 {
		t.Fatalf("wrong length: %d", tr.Len())
	}
	if tr.Step(0).Coords.At(0, 0) != 0 {
		t.Error("trajectory steps must own copies of the coordinates")
	}
	e := tr.Energies()
	if e[0] != -1.0 || e[1] != -1.5 {
		t.Errorf("wrong energies: %v", e)
	}
	if tr.Last().GradNorm != 0.05 {
		t.Errorf("wrong last gradient norm: %f", tr.Last().GradNorm)
	}
}

func TestConversions(t *testing.T) {
	if math.Abs(A2Bohr*Bohr2A-1) > 1e-12 {
		t.Error("length conversions are not inverses")
	}
	if math.Abs(H2Kcal*Kcal2H-1) > 1e-10 {
		t.Error("energy conversions are not inverses")
	}
	if math.Abs(180*Deg2Rad-math.Pi) > 1e-4 {
		t.Error("wrong degree to radian conversion")
	}
}
