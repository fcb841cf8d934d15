/*
 * conv.go, part of gopt.
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

import "math"

//Conv holds the convergence thresholds of an optimization, in Hartree
//and Bohr. A geometry is converged only when all four criteria are
//satisfied at once.
type Conv struct {
	MaxGrad float64
	RMSGrad float64
	MaxStep float64
	RMSStep float64
}

//Threshold presets. The numerical values follow the widespread
//Gaussian convention.
func LooseConv() *Conv {
	return &Conv{MaxGrad: 2.5e-3, RMSGrad: 1.7e-3, MaxStep: 1.0e-2, RMSStep: 6.7e-3}
}

func NormalConv() *Conv {
	return &Conv{MaxGrad: 4.5e-4, RMSGrad: 3.0e-4, MaxStep: 1.8e-3, RMSStep: 1.2e-3}
}

func TightConv() *Conv {
	return &Conv{MaxGrad: 1.5e-5, RMSGrad: 1.0e-5, MaxStep: 6.0e-5, RMSStep: 4.0e-5}
}

//Check returns whether the gradient and the last step, both in the
//working representation, satisfy every threshold.
func (C *Conv) Check(grad, step []float64) bool {
	return maxAbs(grad) < C.MaxGrad && rms(grad) < C.RMSGrad &&
		maxAbs(step) < C.MaxStep && rms(step) < C.RMSStep
}

func maxAbs(v []float64) float64 {
	ret := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > ret {
			ret = a
		}
	}
	return ret
}

func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}
