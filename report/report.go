/*
 * report.go, part of gopt.
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

//Package report renders optimization trajectories for humans: a quick
//ASCII energy profile for the terminal, a PNG for everything else, and
//a plain-text convergence table.
package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	opt "github.com/rmera/gopt"
)

//Error is the error type for the report package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("report error: %s", err.message)
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
	ErrNoSteps = "the trajectory has no steps"
)

//relEnergies returns the energies of the trajectory relative to the
//first step, in kcal/mol.
func relEnergies(traj *opt.Trajectory) []float64 {
	energies := traj.Energies()
	ret := make([]float64, len(energies))
	for i, e := range energies {
		ret[i] = (e - energies[0]) * opt.H2Kcal
	}
	return ret
}

//EnergyASCII writes an ASCII plot of the energy profile of the
//trajectory to w, relative to the first step and in kcal/mol.
func EnergyASCII(w io.Writer, traj *opt.Trajectory, caption string) error {
	if traj == nil || traj.Len() == 0 {
		return Error{ErrNoSteps, []string{"EnergyASCII"}, true}
	}
	if caption == "" {
		caption = "energy / kcal/mol"
	}
	graph := asciigraph.Plot(relEnergies(traj),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	_, err := fmt.Fprintln(w, graph)
	if err != nil {
		return Error{err.Error(), []string{"EnergyASCII"}, true}
	}
	return nil
}

//GradientASCII writes an ASCII plot of the gradient norm per step to w.
func GradientASCII(w io.Writer, traj *opt.Trajectory, caption string) error {
	if traj == nil || traj.Len() == 0 {
		return Error{ErrNoSteps, []string{"GradientASCII"}, true}
	}
	if caption == "" {
		caption = "gradient norm / Hartree/Bohr"
	}
	graph := asciigraph.Plot(traj.GradNorms(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	_, err := fmt.Fprintln(w, graph)
	if err != nil {
		return Error{err.Error(), []string{"GradientASCII"}, true}
	}
	return nil
}

//EnergyPNG writes a PNG with the energy profile of the trajectory to
//filename, relative to the first step and in kcal/mol.
func EnergyPNG(traj *opt.Trajectory, filename, title string) error {
	if traj == nil || traj.Len() == 0 {
		return Error{ErrNoSteps, []string{"EnergyPNG"}, true}
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = "energy / kcal/mol"
	rel := relEnergies(traj)
	pts := make(plotter.XYs, len(rel))
	for i, e := range rel {
		pts[i].X = float64(i)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return Error{err.Error(), []string{"EnergyPNG"}, true}
	}
	p.Add(plotter.NewGrid())
	p.Add(line)
	if err := p.Save(15*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return Error{err.Error(), []string{"EnergyPNG"}, true}
	}
	return nil
}

//Summary writes a plain-text table with the per-step energies and
//gradient measures of the trajectory.
func Summary(w io.Writer, traj *opt.Trajectory) error {
	if traj == nil || traj.Len() == 0 {
		return Error{ErrNoSteps, []string{"Summary"}, true}
	}
	if _, err := fmt.Fprintf(w, "%5s %16s %12s %12s %12s\n",
		"cycle", "E/Hartree", "dE/kcal/mol", "|grad|", "max(grad)"); err != nil {
		return Error{err.Error(), []string{"Summary"}, true}
	}
	first := traj.Step(0).Energy
	for i := 0; i < traj.Len(); i++ {
		s := traj.Step(i)
		_, err := fmt.Fprintf(w, "%5d %16.8f %12.4f %12.3e %12.3e\n",
			i, s.Energy, (s.Energy-first)*opt.H2Kcal, s.GradNorm, s.GradMax)
		if err != nil {
			return Error{err.Error(), []string{"Summary"}, true}
		}
	}
	return nil
}
