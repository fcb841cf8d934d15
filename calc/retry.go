/*
 * retry.go, part of gopt.
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

package calc

import (
	"context"
	"time"

	opt "github.com/rmera/gopt"
)

//RetryPolicy controls how a retrier deals with calculator failures.
type RetryPolicy struct {
	//Attempts is the total number of tries with the primary
	//calculator, including the first one. Values below 1 are taken
	//as 1.
	Attempts int
	//Wait is how long to sleep between tries.
	Wait time.Duration
	//Fallback, if not nil, is tried once after the primary
	//calculator has exhausted its attempts.
	Fallback opt.Calculator
}

type retrier struct {
	c      opt.Calculator
	policy RetryPolicy
}

//WithRetry wraps c in a calculator that retries failed evaluations
//according to policy. A cancelled context is never retried.
func WithRetry(c opt.Calculator, policy RetryPolicy) opt.Calculator {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &retrier{c: c, policy: policy}
}

func (r *retrier) Evaluate(ctx context.Context, geom *opt.Geometry) (*opt.CalcResult, error) {
	var last error
	for i := 0; i < r.policy.Attempts; i++ {
		if i > 0 && r.policy.Wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.policy.Wait):
			}
		}
		res, err := r.c.Evaluate(ctx, geom)
		if err == nil {
			return res, nil
		}
		last = err
		if ctx.Err() != nil {
			return nil, errDecorate(last, "WithRetry")
		}
	}
	if r.policy.Fallback != nil {
		res, err := r.policy.Fallback.Evaluate(ctx, geom)
		if err == nil {
			return res, nil
		}
		last = err
	}
	return nil, Error{ErrRetriesExceeded, "Retry", "", last.Error(), []string{"Evaluate"}, true}
}
