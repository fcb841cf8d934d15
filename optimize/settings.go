/*
 * settings.go, part of gopt.
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

import (
	"io"
	"log"
)

//Step methods.
const (
	RFO = "rfo"
	SD  = "sd"
	CG  = "cg"
)

//Settings holds the parameters of an optimization. The zero value is
//not usable; call SetDefaults or use NewSettings.
type Settings struct {
	//MaxIter is the iteration cap. Hitting it is a non-fatal,
	//unsuccessful outcome; the trajectory so far is still returned.
	MaxIter int
	//Conv holds the convergence thresholds.
	Conv *Conv
	//Method selects the step generation algorithm: RFO, SD or CG.
	Method string
	//Trust is the initial trust radius, with MinTrust and MaxTrust
	//as hard bounds. If the radius would shrink below MinTrust
	//without progress, the run fails.
	Trust    float64
	MinTrust float64
	MaxTrust float64
	//HistorySize is how many displacement/gradient-change pairs the
	//quasi-Newton update keeps. Older pairs are discarded.
	HistorySize int
	//TS makes the optimizer walk uphill along the lowest Hessian
	//mode, targeting a first-order saddle point. Only meaningful
	//with the RFO method.
	TS bool
	//Logger receives warnings, such as a coordinate fallback. By
	//default they are discarded.
	Logger *log.Logger
}

//NewSettings returns optimization settings with the default values.
func NewSettings() *Settings {
	s := new(Settings)
	s.SetDefaults()
	return s
}

//SetDefaults sets reasonable defaults for a minimization: RFO steps,
//the Normal convergence preset and a 0.3 Bohr initial trust radius.
func (S *Settings) SetDefaults() {
	S.MaxIter = 100
	S.Conv = NormalConv()
	S.Method = RFO
	S.Trust = 0.3
	S.MinTrust = 1e-4
	S.MaxTrust = 1.0
	S.HistorySize = 10
	S.TS = false
	S.Logger = log.New(io.Discard, "", 0)
}
