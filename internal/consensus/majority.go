package consensus

import "fmt"

// MajorityVoting computes each task's consensus as the relative frequency of
// its annotations. Tasks with no annotations get a uniform distribution.
type MajorityVoting struct{}

func (MajorityVoting) FitAndComputeConsensus(d *Dataset, question string) ([][]float64, error) {
	cats := d.Categories(question)
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, question)
	}
	anns := d.annotations[question]
	if len(anns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoAnnotations, question)
	}

	counts := newMatrix(len(d.TaskKeys), len(cats))
	for _, a := range anns {
		counts[a.task][a.category]++
	}
	for i := range counts {
		normalizeRow(counts[i])
	}
	return counts, nil
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// normalizeRow scales a row to sum to one; an all-zero row becomes uniform.
func normalizeRow(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v
	}
	if sum == 0 {
		for i := range row {
			row[i] = 1 / float64(len(row))
		}
		return
	}
	for i := range row {
		row[i] /= sum
	}
}
