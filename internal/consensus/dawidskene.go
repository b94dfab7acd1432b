package consensus

import (
	"fmt"
	"math"
)

// DawidSkene fits per-worker confusion matrices and class priors with
// expectation-maximization, then returns the posterior label distribution per
// task. Converges on clean data in a handful of iterations; noisy workers are
// down-weighted according to their estimated reliability.
type DawidSkene struct {
	MaxIterations int
	Tolerance     float64
	Smoothing     float64
}

// NewDawidSkene returns a DawidSkene model with standard fitting parameters.
func NewDawidSkene() *DawidSkene {
	return &DawidSkene{
		MaxIterations: 100,
		Tolerance:     1e-6,
		Smoothing:     0.01,
	}
}

func (m *DawidSkene) FitAndComputeConsensus(d *Dataset, question string) ([][]float64, error) {
	cats := d.Categories(question)
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, question)
	}
	anns := d.annotations[question]
	if len(anns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoAnnotations, question)
	}

	nTasks, nCats, nWorkers := len(d.TaskKeys), len(cats), len(d.Workers)

	// Initialize posteriors from smoothed annotation frequencies.
	posterior := newMatrix(nTasks, nCats)
	for i := range posterior {
		for j := range posterior[i] {
			posterior[i][j] = m.Smoothing
		}
	}
	for _, a := range anns {
		posterior[a.task][a.category]++
	}
	for i := range posterior {
		normalizeRow(posterior[i])
	}

	priors := make([]float64, nCats)
	for iter := 0; iter < m.MaxIterations; iter++ {
		// M-step: class priors and worker confusion matrices from the
		// current posteriors.
		for j := range priors {
			priors[j] = m.Smoothing
		}
		for i := range posterior {
			for j, p := range posterior[i] {
				priors[j] += p
			}
		}
		normalizeRow(priors)

		confusion := make([][][]float64, nWorkers)
		for w := range confusion {
			confusion[w] = newMatrix(nCats, nCats)
			for j := range confusion[w] {
				for l := range confusion[w][j] {
					confusion[w][j][l] = m.Smoothing
				}
			}
		}
		for _, a := range anns {
			for j := 0; j < nCats; j++ {
				confusion[a.worker][j][a.category] += posterior[a.task][j]
			}
		}
		for w := range confusion {
			for j := range confusion[w] {
				normalizeRow(confusion[w][j])
			}
		}

		// E-step: recompute posteriors from priors and confusion.
		next := newMatrix(nTasks, nCats)
		for i := range next {
			copy(next[i], priors)
		}
		for _, a := range anns {
			for j := 0; j < nCats; j++ {
				next[a.task][j] *= confusion[a.worker][j][a.category]
			}
		}
		for i := range next {
			normalizeRow(next[i])
		}

		delta := 0.0
		for i := range next {
			for j := range next[i] {
				delta = math.Max(delta, math.Abs(next[i][j]-posterior[i][j]))
			}
		}
		posterior = next
		if delta < m.Tolerance {
			break
		}
	}

	return posterior, nil
}
