// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survival

// Arm is the observed follow-up for one treatment arm. Durations are in
// months; Events[i] is true when subject i died and false when censored.
type Arm struct {
	Name      string
	Durations []float64
	Events    []bool
}

// EventCount returns the number of observed events.
func (a Arm) EventCount() int {
	n := 0
	for _, e := range a.Events {
		if e {
			n++
		}
	}
	return n
}

// Embedded simulated trial data comparing first-line checkpoint
// inhibitors in advanced melanoma.
var (
	pembrolizumab = Arm{
		Name:      "Pembrolizumab",
		Durations: []float64{6, 8, 10, 12, 15, 18, 20, 24, 28, 36},
		Events:    []bool{true, true, false, true, false, false, false, false, true, false},
	}
	nivolumab = Arm{
		Name:      "Nivolumab",
		Durations: []float64{2, 3, 4, 5, 6, 7, 8, 9, 10, 12},
		Events:    []bool{true, true, true, true, true, true, true, true, false, false},
	}
)

// DefaultArms returns copies of the embedded experimental and comparator arms.
func DefaultArms() (Arm, Arm) {
	return cloneArm(pembrolizumab), cloneArm(nivolumab)
}

func cloneArm(a Arm) Arm {
	return Arm{
		Name:      a.Name,
		Durations: append([]float64(nil), a.Durations...),
		Events:    append([]bool(nil), a.Events...),
	}
}
