// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survival

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// ErrDegenerate reports input the estimators cannot work with.
var ErrDegenerate = errors.New("degenerate survival data")

// medianTolerance absorbs floating-point error in products like 0.8*0.625.
const medianTolerance = 1e-9

// Curve is a Kaplan-Meier product-limit estimate. Points holds one entry
// per distinct observed time, in ascending order.
type Curve struct {
	Subjects int
	Events   int
	Points   []types.CurvePoint
}

// KaplanMeier estimates the survival function of one arm.
func KaplanMeier(durations []float64, events []bool) (Curve, error) {
	if len(durations) != len(events) {
		return Curve{}, fmt.Errorf("%w: %d durations but %d event flags", ErrDegenerate, len(durations), len(events))
	}
	if len(durations) == 0 {
		return Curve{}, fmt.Errorf("%w: no subjects", ErrDegenerate)
	}

	obs := sortedObservations(durations, events)
	curve := Curve{Subjects: len(obs)}
	atRisk := len(obs)
	s := 1.0

	for i := 0; i < len(obs); {
		t := obs[i].time
		deaths, removed := 0, 0
		for ; i < len(obs) && obs[i].time == t; i++ {
			if obs[i].event {
				deaths++
			}
			removed++
		}
		if deaths > 0 {
			s *= 1 - float64(deaths)/float64(atRisk)
		}
		curve.Points = append(curve.Points, types.CurvePoint{
			Time:     t,
			AtRisk:   atRisk,
			Events:   deaths,
			Survival: s,
		})
		curve.Events += deaths
		atRisk -= removed
	}
	return curve, nil
}

// Median returns the first time at which the survival estimate falls to
// 0.5 or below, or nil when it never does.
func (c Curve) Median() *float64 {
	for _, p := range c.Points {
		if p.Survival <= 0.5+medianTolerance {
			t := p.Time
			return &t
		}
	}
	return nil
}

// At returns the survival estimate at time t.
func (c Curve) At(t float64) float64 {
	s := 1.0
	for _, p := range c.Points {
		if p.Time > t {
			break
		}
		s = p.Survival
	}
	return s
}

type observation struct {
	time  float64
	event bool
}

func sortedObservations(durations []float64, events []bool) []observation {
	obs := make([]observation, len(durations))
	for i := range durations {
		obs[i] = observation{time: durations[i], event: events[i]}
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].time < obs[j].time })
	return obs
}
