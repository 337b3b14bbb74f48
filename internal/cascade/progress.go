package cascade

// ProgressFunc receives coarse progress: a label and a fraction in (0, 1].
type ProgressFunc func(label string, fraction float64)

// Fixed checkpoints shared by pipeline runs and deep dives.
const (
	progressStage1 = 0.2
	progressStage2 = 0.5
	progressStage3 = 0.8
	progressDone   = 1.0
)

func (f ProgressFunc) report(label string, fraction float64) {
	if f != nil {
		f(label, fraction)
	}
}
