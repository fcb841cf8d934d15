/*
 * xtb.go, part of gopt.
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
//In order to use this part of the library you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the xtb references if you used the program.

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package calc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	opt "github.com/rmera/gopt"
	v3 "github.com/rmera/gopt/v3"
)

//XTBHandle drives single-point gradient calculations with the xtb
//program.
type XTBHandle struct {
	command   string
	inputname string
	workdir   string
	nCPU      int
	timeout   time.Duration
	calc      *Calc
	options   []string
	gfnff     bool
	natoms    int
}

//NewXTBHandle returns an XTBHandle with the default settings.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//SetnCPU sets the number of CPUs to be used.
func (O *XTBHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

//Command returns the command used to run xtb.
func (O *XTBHandle) Command() string {
	return O.command
}

//SetName sets the name for the job, used for input and output files.
func (O *XTBHandle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the command to run xtb.
func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the directory where input and output files are put.
//Concurrent evaluations need separate directories, as xtb always uses
//the same names for some of its files.
func (O *XTBHandle) SetWorkDir(dir string) {
	O.workdir = dir
}

//SetTimeout sets the maximum wall time for one xtb invocation. Zero
//means no limit.
func (O *XTBHandle) SetTimeout(d time.Duration) {
	O.timeout = d
}

//SetCalc sets the calculation options.
func (O *XTBHandle) SetCalc(Q *Calc) {
	O.calc = Q
}

//SetDefaults sets the handle to use the xtb command in the path, half
//the logical CPUs and the program's default method.
func (O *XTBHandle) SetDefaults() {
	O.command = os.ExpandEnv("xtb")
	O.nCPU = runtime.NumCPU() / 2
	if O.nCPU < 1 {
		O.nCPU = 1
	}
	O.workdir = "."
}

func (O *XTBHandle) path(name string) string {
	return filepath.Join(O.workdir, name)
}

//BuildInput writes the xyz input for xtb and assembles the command line
//options for a gradient calculation on geom.
func (O *XTBHandle) BuildInput(geom *opt.Geometry, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "gopt"
	}
	if geom == nil {
		return Error{ErrMissingData, XTB, O.inputname, "", []string{"BuildInput"}, true}
	}
	if Q == nil {
		Q = new(Calc)
		Q.SetDefaults()
	}
	err := opt.XYZFileWrite(O.path(O.inputname+".xyz"), geom, "xtb input, written by gopt")
	if err != nil {
		return Error{ErrCantInput, XTB, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	O.natoms = geom.Len()
	O.options = make([]string, 0, 8)
	O.options = append(O.options, O.inputname+".xyz")
	O.options = append(O.options, "--grad")
	O.options = append(O.options, fmt.Sprintf("--chrg %d", geom.Charge()))
	O.options = append(O.options, fmt.Sprintf("--uhf %d", geom.Multi()-1))
	if O.nCPU > 1 {
		O.options = append(O.options, fmt.Sprintf("-P %d", O.nCPU))
	}
	O.gfnff = Q.Method == "gfnff"
	if !isInString([]string{"gfn0", "gfn1", "gfn2", "gfnff"}, Q.Method) {
		O.options = append(O.options, "--gfn 2") //default method
	} else if !O.gfnff {
		m := strings.ReplaceAll(Q.Method, "gfn", "")
		O.options = append(O.options, "--gfn "+m)
	} else {
		O.options = append(O.options, "--gfnff")
	}
	if Q.Dielectric > 0 && Q.Method != "gfn0" { //gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			O.options = append(O.options, "--alpb "+solvent)
		}
	}
	if Q.Others != "" {
		O.options = append(O.options, Q.Others)
	}
	return nil
}

//Run runs xtb for a calculation previously set up with BuildInput,
//waiting for it to finish. The context limits the invocation; if the
//handle also has a timeout configured, the stricter of the two applies.
func (O *XTBHandle) Run(ctx context.Context) error {
	if O.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, O.timeout)
		defer cancel()
	}
	com := fmt.Sprintf("%s %s > %s.out 2>&1", O.command, strings.Join(O.options, " "), O.inputname)
	command := exec.CommandContext(ctx, "sh", "-c", com)
	command.Dir = O.workdir
	err := command.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Error{ErrTimeout, XTB, O.inputname, err.Error(), []string{"Run"}, true}
		}
		return Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	os.Remove(O.path("xtbrestart")) //a stale restart file can poison later runs
	return nil
}

//normalTermination checks that an xtb calculation has terminated
//normally, by scanning its output backwards.
func (O *XTBHandle) normalTermination() bool {
	//"abnormal termination" contains "normal termination", so the
	//failure marker has to be ruled out first
	out := O.path(O.inputname + ".out")
	return searchBackwards("abnormal termination of x", out) == "" &&
		searchBackwards("normal termination of x", out) != ""
}

//Energy gets the energy from the last xtb calculation run by the
//handle. It returns an error if the energy can't be read, or if the
//calculation didn't terminate properly.
func (O *XTBHandle) Energy() (float64, error) {
	if !O.normalTermination() {
		return 0, Error{ErrProbableProblem, XTB, O.inputname, "", []string{"Energy"}, false}
	}
	energy, _, err := parseTMGradient(O.path("gradient"), O.natoms)
	if err != nil {
		return 0, errDecorate(err, "Energy")
	}
	return energy, nil
}

//Gradient gets the last gradient from an xtb gradient calculation.
func (O *XTBHandle) Gradient() (*v3.Matrix, error) {
	if !O.normalTermination() {
		return nil, Error{ErrProbableProblem, XTB, O.inputname, "", []string{"Gradient"}, false}
	}
	_, grad, err := parseTMGradient(O.path("gradient"), O.natoms)
	if err != nil {
		return nil, errDecorate(err, "Gradient")
	}
	return grad, nil
}

//Evaluate obtains the energy and gradient of geom from one xtb run. It
//makes XTBHandle satisfy the Calculator interface of the parent
//package.
func (O *XTBHandle) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	if err := O.BuildInput(geom, O.calc); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	if err := O.Run(ctx); err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	if !O.normalTermination() {
		return nil, Error{ErrProbableProblem, XTB, O.inputname, "", []string{"Evaluate"}, true}
	}
	energy, grad, err := parseTMGradient(O.path("gradient"), O.natoms)
	if err != nil {
		return nil, errDecorate(err, "Evaluate")
	}
	return &opt.CalcResult{Energy: energy, Gradient: grad}, nil
}

//parseTMGradient reads energy and gradient from a Turbomole-format
//gradient file, the format xtb writes with --grad. Only the last cycle
//in the file is considered. Energies are in Hartree and gradients in
//Hartree/Bohr, so no conversion is needed.
func parseTMGradient(filename string, natoms int) (float64, *v3.Matrix, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, filename, err.Error(), []string{"parseTMGradient"}, true}
	}
	lines := strings.Split(string(data), "\n")
	last := -1
	for i, line := range lines {
		if strings.Contains(line, "cycle") && strings.Contains(line, "energy") {
			last = i
		}
	}
	if last < 0 || len(lines) < last+1+2*natoms {
		return 0, nil, Error{ErrNoGradient, XTB, filename, "no complete gradient cycle found", []string{"parseTMGradient"}, true}
	}
	fields := strings.Fields(lines[last])
	var energy float64
	found := false
	for i, f := range fields {
		if f == "energy" && i+2 < len(fields) {
			energy, err = strconv.ParseFloat(strings.TrimSuffix(fields[i+2], "="), 64)
			if err == nil {
				found = true
			}
			break
		}
	}
	if !found {
		return 0, nil, Error{ErrNoEnergy, XTB, filename, lines[last], []string{"parseTMGradient"}, true}
	}
	grad := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		//coordinate lines come first, then the gradient lines
		line := lines[last+1+natoms+i]
		f := strings.Fields(line)
		if len(f) < 3 {
			return 0, nil, Error{ErrNoGradient, XTB, filename, line, []string{"parseTMGradient"}, true}
		}
		for j := 0; j < 3; j++ {
			//Fortran D exponents appear in some versions
			v, err := strconv.ParseFloat(strings.ReplaceAll(f[j], "D", "E"), 64)
			if err != nil {
				return 0, nil, Error{ErrNoGradient, XTB, filename, line, []string{"parseTMGradient"}, true}
			}
			grad.Set(i, j, v)
		}
	}
	return energy, grad, nil
}

var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}

//errDecorate decorates the error with the caller's name before
//returning it. Foreign errors (a wrapped calculator can return
//anything, including a context error) are first turned into this
//package's type.
func errDecorate(err error, caller string) error {
	err2, ok := err.(opt.Error)
	if !ok {
		err2 = Error{err.Error(), "", "", "", nil, true}
	}
	err2.Decorate(caller)
	return err2
}
