package consensus

import "log/slog"

// Status tags the outcome of a consensus computation so the degrade policy is
// an explicit branch: import failures abort a request upstream of this
// package, but computation failures reduce to an empty or partial result and
// the request still returns whatever files were imported.
type Status int

const (
	// StatusComputed: the dataset was built and fitting ran; individual
	// questions may still have been skipped.
	StatusComputed Status = iota
	// StatusDatasetFailed: the imported CSVs could not be assembled; the
	// question list degrades to the sentinel and no consensus is produced.
	StatusDatasetFailed
	// StatusModelFailed: the model could not be constructed.
	StatusModelFailed
)

// SentinelQuestion replaces the question list when dataset construction fails.
const SentinelQuestion = "N/A"

// Files names the imported CSV triplet a computation consumes.
type Files struct {
	TaskInfoOnly string
	Task         string
	TaskRun      string
}

// Options carries computation settings.
type Options struct {
	TaskKey   string
	Separator rune
}

// Outcome is the tagged result of Compute.
type Outcome struct {
	Status      Status
	Questions   []string
	Consensuses map[string][][]float64
	Dataset     *Dataset
}

// Compute builds the annotation dataset and fits the named model per
// question. Dataset-construction errors degrade the outcome instead of
// failing the request; per-question fitting errors skip only that question.
func Compute(questions []string, categories map[string][]string, files Files, modelName string, opts Options, logger *slog.Logger) Outcome {
	logger = logger.With("system", "consensus")
	out := Outcome{
		Status:      StatusComputed,
		Questions:   questions,
		Consensuses: make(map[string][][]float64, len(questions)),
	}

	dataset, err := NewDatasetFromFiles(
		files.TaskRun,
		files.TaskInfoOnly,
		files.Task,
		questions,
		categories,
		opts.TaskKey,
		opts.Separator,
	)
	if err != nil {
		logger.Error("dataset construction failed", "error", err)
		out.Status = StatusDatasetFailed
		out.Questions = []string{SentinelQuestion}
		return out
	}
	out.Dataset = dataset
	logger.Debug("dataset ready",
		"tasks", len(dataset.TaskKeys),
		"workers", len(dataset.Workers),
		"questions", dataset.Questions,
	)

	model, err := NewModel(modelName)
	if err != nil {
		logger.Error("model construction failed", "model", modelName, "error", err)
		out.Status = StatusModelFailed
		return out
	}

	for _, q := range out.Questions {
		result, err := model.FitAndComputeConsensus(dataset, q)
		if err != nil {
			logger.Error("consensus fitting failed", "question", q, "error", err)
			continue
		}
		out.Consensuses[q] = result
		logger.Info("consensus computed", "question", q, "model", modelName)
	}
	return out
}
