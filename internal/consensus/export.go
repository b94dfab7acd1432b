package consensus

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"consensor/pkg/scratch"
	"consensor/pkg/slug"
)

func consensusFileName(projectName, question, format string) string {
	return fmt.Sprintf("%s_consensus_%s.%s", slug.Make(projectName), slug.Make(question), format)
}

// Export serializes each computed consensus to its own file inside the
// workspace, one per question, named
// <slug(project)>_consensus_<slug(question)>.<ext>. Rows are task keys in
// dataset order, columns the question's categories. Existing files at the
// target paths are deleted first.
func Export(format string, out Outcome, projectName string, ws *scratch.Workspace, opts Options, logger *slog.Logger) ([]string, error) {
	if out.Dataset == nil || len(out.Consensuses) == 0 {
		return nil, nil
	}
	logger = logger.With("system", "consensus")

	var paths []string
	for _, question := range out.Dataset.Questions {
		consensus, ok := out.Consensuses[question]
		if !ok {
			continue
		}

		name := consensusFileName(projectName, question, format)
		path, err := ws.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("consensus file %q: %w", name, err)
		}
		ws.Remove(name)

		if err := writeConsensus(path, format, out.Dataset, question, consensus, opts); err != nil {
			return nil, err
		}
		paths = append(paths, path)
		logger.Debug("consensus exported", "question", question, "path", path)
	}
	return paths, nil
}

func writeConsensus(path, format string, d *Dataset, question string, consensus [][]float64, opts Options) error {
	switch format {
	case "json":
		return writeJSON(path, d, question, consensus)
	default:
		return writeCSV(path, d, question, consensus, opts)
	}
}

func writeCSV(path string, d *Dataset, question string, consensus [][]float64, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = opts.Separator

	header := append([]string{opts.TaskKey}, d.Categories(question)...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i, key := range d.TaskKeys {
		row := make([]string, 0, len(header))
		row = append(row, key)
		for _, score := range consensus[i] {
			row = append(row, strconv.FormatFloat(score, 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeJSON(path string, d *Dataset, question string, consensus [][]float64) error {
	cats := d.Categories(question)
	table := make(map[string]map[string]float64, len(d.TaskKeys))
	for i, key := range d.TaskKeys {
		scores := make(map[string]float64, len(cats))
		for j, cat := range cats {
			scores[cat] = consensus[i][j]
		}
		table[key] = scores
	}

	data, err := json.MarshalIndent(table, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
