/*
 * files.go, part of gopt.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gopt/v3"
)

//XYZRead reads an XYZ-formatted geometry from in. Coordinates in the
//file are in Angstroms, as is conventional for the format; they are
//converted to Bohr on reading. It returns the geometry and the comment
//line of the file.
func XYZRead(in io.Reader) (*Geometry, string, error) {
	scan := bufio.NewScanner(in)
	if !scan.Scan() {
		return nil, "", fmt.Errorf("XYZRead: empty input")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scan.Text()))
	if err != nil || natoms <= 0 {
		return nil, "", fmt.Errorf("XYZRead: ill-formatted atom-number line: %q", scan.Text())
	}
	if !scan.Scan() {
		return nil, "", fmt.Errorf("XYZRead: missing comment line")
	}
	comment := scan.Text()
	atoms := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !scan.Scan() {
			return nil, "", fmt.Errorf("XYZRead: expected %d atoms, got %d", natoms, i)
		}
		fields := strings.Fields(scan.Text())
		if len(fields) < 4 {
			return nil, "", fmt.Errorf("XYZRead: ill-formatted line: %q", scan.Text())
		}
		atoms = append(atoms, &Atom{Symbol: fields[0]})
		for j := 1; j < 4; j++ {
			val, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, "", fmt.Errorf("XYZRead: can't parse coordinate %q: %v", fields[j], err)
			}
			coords = append(coords, val*A2Bohr)
		}
	}
	vecs, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, "", err
	}
	geom, err := NewGeometry(atoms, vecs)
	return geom, comment, err
}

//XYZFileRead reads the XYZ file xyzname. See XYZRead.
func XYZFileRead(xyzname string) (*Geometry, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	geom, _, err := XYZRead(f)
	return geom, err
}

//XYZWrite writes the geometry to out in XYZ format, with the given
//comment line. Coordinates are converted from Bohr to Angstroms.
func XYZWrite(out io.Writer, geom *Geometry, comment string) error {
	if geom == nil {
		return fmt.Errorf("XYZWrite: nil geometry")
	}
	//a newline in the comment would corrupt the format
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(out, "%d\n%s\n", geom.Len(), comment); err != nil {
		return err
	}
	c := geom.Coords()
	for i := 0; i < geom.Len(); i++ {
		_, err := fmt.Fprintf(out, "%-3s %12.7f %12.7f %12.7f\n", geom.Atom(i).Symbol,
			c.At(i, 0)*Bohr2A, c.At(i, 1)*Bohr2A, c.At(i, 2)*Bohr2A)
		if err != nil {
			return err
		}
	}
	return nil
}

//XYZFileWrite writes the geometry to the XYZ file xyzname. See XYZWrite.
func XYZFileWrite(xyzname string, geom *Geometry, comment string) error {
	f, err := os.Create(xyzname)
	if err != nil {
		return err
	}
	defer f.Close()
	return XYZWrite(f, geom, comment)
}
