/*
 * xyz.go, part of gopt.
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

//Package traj persists optimization trajectories as multi-frame XYZ
//files, optionally compressed. The compression is chosen from the file
//name: ".zst" and ".zstd" get zstd, ".gz" gets gzip, anything else is
//written plain.
package traj

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

//Error is the error type for trajectory I/O.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("traj error: %s (file %s)", err.message, err.filename)
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
	TrajUnIniWrite  = "attempted to write to an uninitialized or closed trajectory"
	TrajUnIniRead   = "attempted to read from an uninitialized or closed trajectory"
	NilCoordinates  = "given nil coordinates"
	WrongAtomNumber = "frame has the wrong number of atoms"
)

//Writer appends geometry frames to one trajectory file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	geom      *opt.Geometry
	filename  string
	writeable bool
	frames    int
}

//NewWriter opens name for writing and returns a trajectory writer for
//systems with the atoms of geom. Only the atom identities of geom are
//kept; the coordinates of each frame come from the WNext calls.
func NewWriter(name string, geom *opt.Geometry) (*Writer, error) {
	if geom == nil {
		return nil, Error{NilCoordinates, name, []string{"NewWriter"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	h, err := compressor(name, f)
	if err != nil {
		f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	return &Writer{
		f:         f,
		h:         h,
		geom:      geom.Copy(),
		filename:  name,
		writeable: true,
	}, nil
}

//compressor wraps w in the compressor the file name asks for.
func compressor(name string, w io.Writer) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.geom.Len()
}

//WNext appends one frame with the given coordinates, in Bohr. The
//comment line carries the frame number and, if given, the energy in
//Hartree.
func (W *Writer) WNext(coord *v3.Matrix, energy ...float64) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	if coord.NVecs() != W.geom.Len() {
		return Error{WrongAtomNumber, W.filename, []string{"WNext"}, true}
	}
	W.geom.SetCoords(coord)
	comment := fmt.Sprintf("frame %d", W.frames)
	if len(energy) > 0 {
		comment = fmt.Sprintf("frame %d energy= %12.9f", W.frames, energy[0])
	}
	if err := opt.XYZWrite(W.h, W.geom, comment); err != nil {
		return Error{err.Error(), W.filename, []string{"WNext"}, true}
	}
	W.frames++
	return nil
}

//WTraj writes a whole optimization trajectory, one frame per accepted
//step.
func (W *Writer) WTraj(traj *opt.Trajectory) error {
	for i := 0; i < traj.Len(); i++ {
		s := traj.Step(i)
		if err := W.WNext(s.Coords, s.Energy); err != nil {
			return errDecorate(err, "WTraj")
		}
	}
	return nil
}

//Close flushes and closes the trajectory. The Writer cannot be used
//afterwards.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	if err := W.h.Close(); err != nil {
		W.f.Close()
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return W.f.Close()
}

//Reader reads frames back from a trajectory file written by Writer.
type Reader struct {
	f        *os.File
	h        io.ReadCloser
	buf      *bufio.Reader
	natoms   int
	filename string
	readable bool
}

//NewReader opens the trajectory file name for reading.
func NewReader(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	h, err := decompressor(name, f)
	if err != nil {
		f.Close()
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	return &Reader{
		f:        f,
		h:        h,
		buf:      bufio.NewReader(h),
		filename: name,
		readable: true,
	}, nil
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{d}, nil
	case strings.HasSuffix(name, ".gz"):
		return gzip.NewReader(r)
	}
	return io.NopCloser(r), nil
}

//line returns the next non-empty line, without its terminator.
func (R *Reader) line() (string, error) {
	for {
		s, err := R.buf.ReadString('\n')
		s = strings.TrimSpace(s)
		if s != "" {
			return s, nil
		}
		if err != nil {
			return "", err
		}
	}
}

//Next returns the geometry of the next frame, or io.EOF after the
//last one.
func (R *Reader) Next() (*opt.Geometry, error) {
	if !R.readable {
		return nil, Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	head, err := R.line()
	if err != nil {
		//a clean end of the trajectory
		return nil, io.EOF
	}
	natoms, err := strconv.Atoi(head)
	if err != nil || natoms <= 0 {
		return nil, Error{"ill-formatted atom-number line: " + head, R.filename, []string{"Next"}, true}
	}
	if R.natoms == 0 {
		R.natoms = natoms
	} else if natoms != R.natoms {
		return nil, Error{WrongAtomNumber, R.filename, []string{"Next"}, true}
	}
	//the comment line may legitimately be empty, so no line() here
	if _, err := R.buf.ReadString('\n'); err != nil {
		return nil, Error{"truncated frame", R.filename, []string{"Next"}, true}
	}
	atoms := make([]*opt.Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		l, err := R.line()
		if err != nil {
			return nil, Error{"truncated frame", R.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(l)
		if len(fields) < 4 {
			return nil, Error{"ill-formatted coordinate line: " + l, R.filename, []string{"Next"}, true}
		}
		atoms = append(atoms, &opt.Atom{Symbol: fields[0]})
		for j := 1; j < 4; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, Error{"can't parse coordinate: " + fields[j], R.filename, []string{"Next"}, true}
			}
			coords = append(coords, v*opt.A2Bohr)
		}
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	geom, err := opt.NewGeometry(atoms, m)
	if err != nil {
		return nil, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	return geom, nil
}

//Close closes the trajectory. The Reader cannot be used afterwards.
func (R *Reader) Close() error {
	if R == nil || !R.readable {
		return nil
	}
	R.readable = false
	if err := R.h.Close(); err != nil {
		R.f.Close()
		return Error{err.Error(), R.filename, []string{"Close"}, true}
	}
	return R.f.Close()
}

func errDecorate(err error, caller string) error {
	err2 := err.(opt.Error)
	err2.Decorate(caller)
	return err2
}
