/*
 * orca.go, part of gopt.
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

package calc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

//OrcaHandle drives single-point gradient calculations with ORCA.
type OrcaHandle struct {
	command   string
	inputname string
	workdir   string
	nCPU      int
	timeout   time.Duration
	calc      *Calc
	natoms    int
}

//NewOrcaHandle returns an OrcaHandle with the default settings.
func NewOrcaHandle() *OrcaHandle {
	run := new(OrcaHandle)
	run.SetDefaults()
	return run
}

//SetnCPU sets the number of CPUs to be used.
func (O *OrcaHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

//SetName sets the name for the job, used for input and output files.
func (O *OrcaHandle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the command to run ORCA. For parallel runs ORCA needs
//the full path to the executable; this is the user's responsibility.
func (O *OrcaHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the directory where input and output files are put.
func (O *OrcaHandle) SetWorkDir(dir string) {
	O.workdir = dir
}

//SetTimeout sets the maximum wall time for one ORCA invocation. Zero
//means no limit.
func (O *OrcaHandle) SetTimeout(d time.Duration) {
	O.timeout = d
}

//SetCalc sets the calculation options.
func (O *OrcaHandle) SetCalc(Q *Calc) {
	O.calc = Q
}

//SetDefaults sets the handle to use the orca command in the path and
//one CPU.
func (O *OrcaHandle) SetDefaults() {
	O.command = os.ExpandEnv("orca")
	O.nCPU = 1
	O.workdir = "."
}

func (O *OrcaHandle) path(name string) string {
	return filepath.Join(O.workdir, name)
}

//BuildInput writes an ORCA input for an energy+gradient calculation on
//geom.
func (O *OrcaHandle) BuildInput(geom *opt.Geometry, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "gopt"
	}
	if geom == nil {
		return Error{ErrMissingData, Orca, O.inputname, "", []string{"BuildInput"}, true}
	}
	if Q == nil || Q.Method == "" || Q.Basis == "" {
		return Error{ErrMissingData, Orca, O.inputname, "ORCA needs at least a method and a basis set", []string{"BuildInput"}, true}
	}
	f, err := os.Create(O.path(O.inputname + ".inp"))
	if err != nil {
		return Error{ErrCantInput, Orca, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	defer f.Close()
	main := []string{"!", "ENGRAD", Q.Method, Q.Basis}
	if Q.Others != "" {
		main = append(main, Q.Others)
	}
	fmt.Fprintln(f, strings.Join(main, " "))
	if Q.Dielectric > 0 {
		fmt.Fprintf(f, "%%cpcm epsilon %4.1f end\n", Q.Dielectric)
	}
	if O.nCPU > 1 {
		fmt.Fprintf(f, "%%pal nprocs %d end\n", O.nCPU)
	}
	if Q.Memory > 0 {
		fmt.Fprintf(f, "%%maxcore %d\n", Q.Memory)
	}
	fmt.Fprintf(f, "* xyz %d %d\n", geom.Charge(), geom.Multi())
	c := geom.Coords()
	for i := 0; i < geom.Len(); i++ {
		fmt.Fprintf(f, "%-3s %12.7f %12.7f %12.7f\n", geom.Atom(i).Symbol,
			c.At(i, 0)*opt.Bohr2A, c.At(i, 1)*opt.Bohr2A, c.At(i, 2)*opt.Bohr2A)
	}
	fmt.Fprintln(f, "*")
	O.natoms = geom.Len()
	return nil
}

//Run runs ORCA for a calculation previously set up with BuildInput,
//waiting for it to finish.
func (O *OrcaHandle) Run(ctx context.Context) error {
	if O.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, O.timeout)
		defer cancel()
	}
	com := fmt.Sprintf("%s %s.inp > %s.out 2>&1", O.command, O.inputname, O.inputname)
	command := exec.CommandContext(ctx, "sh", "-c", com)
	command.Dir = O.workdir
	err := command.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Error{ErrTimeout, Orca, O.inputname, err.Error(), []string{"Run"}, true}
		}
		return Error{ErrNotRunning, Orca, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

//Evaluate obtains the energy and gradient of geom from one ORCA run.
//It makes OrcaHandle satisfy the Calculator interface of the parent
//package.
func (O *OrcaHandle) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	if err := O.BuildInput(geom, O.calc); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	if err := O.Run(ctx); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	energy, grad, err := parseEngrad(O.path(O.inputname+".engrad"), O.natoms)
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}

//parseEngrad reads an ORCA .engrad file: after stripping the comment
//lines the file holds the atom count, the energy in Hartree, and the
//3N gradient components in Hartree/Bohr, in that order.
func parseEngrad(filename string, natoms int) (float64, *v3.Matrix, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, nil, Error{ErrNoGradient, Orca, filename, err.Error(), []string{"parseEngrad"}, true}
	}
	tokens := make([]string, 0, 3*natoms+2)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if len(tokens) < 2+3*natoms {
		return 0, nil, Error{ErrNoGradient, Orca, filename, "truncated engrad file", []string{"parseEngrad"}, true}
	}
	n, err := strconv.Atoi(tokens[0])
	if err != nil || n != natoms {
		return 0, nil, Error{ErrNoGradient, Orca, filename, fmt.Sprintf("engrad file is for %s atoms, expected %d", tokens[0], natoms), []string{"parseEngrad"}, true}
	}
	energy, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return 0, nil, Error{ErrNoEnergy, Orca, filename, tokens[1], []string{"parseEngrad"}, true}
	}
	grad := v3.Zeros(natoms)
	for i := 0; i < 3*natoms; i++ {
		v, err := strconv.ParseFloat(tokens[2+i], 64)
		if err != nil {
			return 0, nil, Error{ErrNoGradient, Orca, filename, tokens[2+i], []string{"parseEngrad"}, true}
		}
		grad.Set(i/3, i%3, v)
	}
	return energy, grad, nil
}
