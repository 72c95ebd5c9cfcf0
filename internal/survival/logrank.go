// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survival

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogRank compares the survival of two arms with the Mantel-Cox log-rank
// test and returns the chi-square statistic (1 degree of freedom) and its
// p-value.
func LogRank(a, b Arm) (stat, p float64, err error) {
	for _, arm := range []Arm{a, b} {
		if len(arm.Durations) != len(arm.Events) {
			return 0, 0, fmt.Errorf("%w: arm %q has %d durations but %d event flags",
				ErrDegenerate, arm.Name, len(arm.Durations), len(arm.Events))
		}
		if len(arm.Durations) == 0 {
			return 0, 0, fmt.Errorf("%w: arm %q has no subjects", ErrDegenerate, arm.Name)
		}
	}

	var observed, expected, variance float64
	for _, t := range eventTimes(a, b) {
		n1, d1 := riskAndDeaths(a, t)
		n2, d2 := riskAndDeaths(b, t)
		n := float64(n1 + n2)
		d := float64(d1 + d2)

		observed += float64(d1)
		expected += d * float64(n1) / n
		if n > 1 {
			variance += d * (float64(n1) / n) * (float64(n2) / n) * (n - d) / (n - 1)
		}
	}

	if variance <= 0 {
		return 0, 0, fmt.Errorf("%w: log-rank variance is zero", ErrDegenerate)
	}

	diff := observed - expected
	stat = diff * diff / variance
	p = distuv.ChiSquared{K: 1}.Survival(stat)
	return stat, p, nil
}

// eventTimes returns the distinct times at which either arm observed an
// event, ascending.
func eventTimes(a, b Arm) []float64 {
	seen := make(map[float64]bool)
	var times []float64
	for _, arm := range []Arm{a, b} {
		for i, t := range arm.Durations {
			if arm.Events[i] && !seen[t] {
				seen[t] = true
				times = append(times, t)
			}
		}
	}
	sort.Float64s(times)
	return times
}

// riskAndDeaths counts the subjects of arm still at risk at t and those
// who died at t.
func riskAndDeaths(arm Arm, t float64) (atRisk, deaths int) {
	for i, d := range arm.Durations {
		if d >= t {
			atRisk++
			if d == t && arm.Events[i] {
				deaths++
			}
		}
	}
	return atRisk, deaths
}
