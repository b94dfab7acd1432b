package pybossa

import (
	"context"
	"fmt"

	"consensor/pkg/archive"
	"consensor/pkg/scratch"
)

// TaskFiles holds the four CSV files extracted from the task and task-run
// export archives, info-only members first.
type TaskFiles struct {
	TaskInfoOnly    string
	Task            string
	TaskRunInfoOnly string
	TaskRun         string
}

// ImportTaskFiles fetches the task and task-run exports in CSV format and
// extracts each validated member pair into the workspace. Archives that
// violate the member-pair contract abort the import.
func (c *Client) ImportTaskFiles(ctx context.Context, apiURL string, ws *scratch.Workspace, auth Auth) (*TaskFiles, *UpstreamResponse, error) {
	taskZip, _, err := c.fetchExport(ctx, apiURL, DataTask, FormatCSV, auth)
	if err != nil {
		return nil, nil, err
	}
	taskInfoOnly, task, err := archive.ExtractPair(taskZip, ws.Dir())
	if err != nil {
		return nil, nil, fmt.Errorf("task export: %w", err)
	}
	c.logger.Debug("extracted task pair", "info_only", taskInfoOnly, "full", task)

	runZip, meta, err := c.fetchExport(ctx, apiURL, DataTaskRun, FormatCSV, auth)
	if err != nil {
		return nil, nil, err
	}
	runInfoOnly, run, err := archive.ExtractPair(runZip, ws.Dir())
	if err != nil {
		return nil, nil, fmt.Errorf("task_run export: %w", err)
	}
	c.logger.Debug("extracted task_run pair", "info_only", runInfoOnly, "full", run)

	return &TaskFiles{
		TaskInfoOnly:    taskInfoOnly,
		Task:            task,
		TaskRunInfoOnly: runInfoOnly,
		TaskRun:         run,
	}, meta, nil
}

// ImportResultFiles fetches the result export in the requested format and
// extracts every member into the workspace. CSV exports carry a two-member
// archive, JSON exports a single member; no pairing validation is applied to
// result archives.
func (c *Client) ImportResultFiles(ctx context.Context, apiURL string, ws *scratch.Workspace, format string, auth Auth) ([]string, *UpstreamResponse, error) {
	resultZip, meta, err := c.fetchExport(ctx, apiURL, DataResult, format, auth)
	if err != nil {
		return nil, nil, err
	}
	paths, err := archive.ExtractAll(resultZip, ws.Dir())
	if err != nil {
		return nil, nil, fmt.Errorf("result export: %w", err)
	}
	c.logger.Debug("extracted result files", "count", len(paths))
	return paths, meta, nil
}
