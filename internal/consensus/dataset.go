// Package consensus aggregates noisy crowd-worker annotations into a
// best-estimate label distribution per task and question. A Dataset is built
// from the imported task and task-run CSVs; registered models fit per-question
// consensus matrices over it.
package consensus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
)

// Task-run export column names.
const (
	colTaskRef  = "task_id"
	colWorker   = "user_id"
	colWorkerIP = "user_ip"
)

// annotation is one worker's answer to one question on one task, expressed as
// dataset indices.
type annotation struct {
	task     int
	worker   int
	category int
}

// Dataset is the annotation matrix built from one project's imported files.
type Dataset struct {
	// Questions in configuration order; drives output file naming.
	Questions []string
	// TaskKeys in task-export order, one consensus row each.
	TaskKeys []string
	// Workers in first-seen order.
	Workers []string

	categories  map[string][]string
	catIndex    map[string]map[string]int
	taskIndex   map[string]int
	workerIndex map[string]int
	annotations map[string][]annotation
}

// NewDatasetFromFiles builds a Dataset from the imported CSV triplet. Task
// identity comes from the task export's key column; annotations come from the
// task-run export, whose generic info_<i> columns map to the i-th question.
// When the question configuration supplies category lists they fix the
// consensus column order; otherwise categories are collected from observed
// answers in first-seen order.
func NewDatasetFromFiles(taskRunPath, taskInfoPath, taskPath string, questions []string, categories map[string][]string, taskKey string, sep rune) (*Dataset, error) {
	d := &Dataset{
		Questions:   slices.Clone(questions),
		categories:  make(map[string][]string, len(questions)),
		catIndex:    make(map[string]map[string]int, len(questions)),
		taskIndex:   make(map[string]int),
		workerIndex: make(map[string]int),
		annotations: make(map[string][]annotation, len(questions)),
	}

	for _, q := range questions {
		d.catIndex[q] = make(map[string]int)
		if cats, ok := categories[q]; ok {
			d.categories[q] = slices.Clone(cats)
			for i, cat := range cats {
				d.catIndex[q][cat] = i
			}
		}
	}

	if err := d.readTasks(taskPath, taskKey, sep); err != nil {
		return nil, err
	}
	// The info-only member carries the same key column; a readable header
	// confirms the extracted pair is coherent.
	if err := validateKeyColumn(taskInfoPath, taskKey, sep); err != nil {
		return nil, err
	}
	if err := d.readAnnotations(taskRunPath, categories != nil, sep); err != nil {
		return nil, err
	}

	return d, nil
}

// Categories returns the ordered category labels for a question.
func (d *Dataset) Categories(question string) []string {
	return d.categories[question]
}

// Annotations returns the number of annotations recorded for a question.
func (d *Dataset) Annotations(question string) int {
	return len(d.annotations[question])
}

func (d *Dataset) readTasks(taskPath, taskKey string, sep rune) error {
	rows, header, err := readCSV(taskPath, sep)
	if err != nil {
		return fmt.Errorf("task file: %w", err)
	}
	keyCol := slices.Index(header, taskKey)
	if keyCol < 0 {
		return fmt.Errorf("task file: missing key column %q", taskKey)
	}
	for _, row := range rows {
		key := row[keyCol]
		if key == "" {
			continue
		}
		if _, seen := d.taskIndex[key]; !seen {
			d.taskIndex[key] = len(d.TaskKeys)
			d.TaskKeys = append(d.TaskKeys, key)
		}
	}
	if len(d.TaskKeys) == 0 {
		return fmt.Errorf("task file: no tasks found")
	}
	return nil
}

func (d *Dataset) readAnnotations(taskRunPath string, fixedCategories bool, sep rune) error {
	rows, header, err := readCSV(taskRunPath, sep)
	if err != nil {
		return fmt.Errorf("task_run file: %w", err)
	}

	taskCol := slices.Index(header, colTaskRef)
	if taskCol < 0 {
		return fmt.Errorf("task_run file: missing column %q", colTaskRef)
	}
	workerCol := slices.Index(header, colWorker)
	if workerCol < 0 {
		workerCol = slices.Index(header, colWorkerIP)
	}
	if workerCol < 0 {
		return fmt.Errorf("task_run file: missing column %q or %q", colWorker, colWorkerIP)
	}

	answerCols := make([]int, len(d.Questions))
	for i, q := range d.Questions {
		col := slices.Index(header, fmt.Sprintf("info_%d", i))
		if col < 0 {
			// Upstream preprocessing may already have renamed the
			// generic column to the question text.
			col = slices.Index(header, q)
		}
		if col < 0 {
			return fmt.Errorf("task_run file: no answer column for question %q", q)
		}
		answerCols[i] = col
	}

	for _, row := range rows {
		task, ok := d.taskIndex[row[taskCol]]
		if !ok {
			continue
		}
		worker := d.internWorker(row[workerCol])

		for i, q := range d.Questions {
			answer := row[answerCols[i]]
			if answer == "" {
				continue
			}
			cat, ok := d.catIndex[q][answer]
			if !ok {
				if fixedCategories {
					// Answers outside the configured labels are
					// discarded rather than widening categories.
					continue
				}
				cat = len(d.categories[q])
				d.categories[q] = append(d.categories[q], answer)
				d.catIndex[q][answer] = cat
			}
			d.annotations[q] = append(d.annotations[q], annotation{
				task:     task,
				worker:   worker,
				category: cat,
			})
		}
	}
	return nil
}

func (d *Dataset) internWorker(key string) int {
	if idx, ok := d.workerIndex[key]; ok {
		return idx
	}
	idx := len(d.Workers)
	d.workerIndex[key] = idx
	d.Workers = append(d.Workers, key)
	return idx
}

func validateKeyColumn(path, taskKey string, sep rune) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("task info file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("task info file: %w", err)
	}
	if !slices.Contains(header, taskKey) {
		return fmt.Errorf("task info file: missing key column %q", taskKey)
	}
	return nil
}

func readCSV(path string, sep rune) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(row) < len(header) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}
