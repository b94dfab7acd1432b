// Package exports runs the end-to-end export pipeline: validate request
// arguments, import task, task-run, and result archives from the upstream
// API, fetch the project's question configuration, compute per-question
// consensus, serialize the results, and bundle everything into a ZIP. All
// files live in a request-scoped workspace that is released on every exit
// path.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"consensor/internal/config"
	"consensor/internal/consensus"
	"consensor/internal/pybossa"
	"consensor/pkg/archive"
	"consensor/pkg/scratch"
)

// Request carries one validated export invocation.
type Request struct {
	// ExportURL is the upstream tasks export endpoint, shaped
	// <base>project/<name>/tasks...
	ExportURL string
	// Format is the result and consensus serialization: csv or json.
	Format string
	// Model is the registered consensus algorithm name.
	Model string
	// Auth is forwarded opaquely to the upstream API.
	Auth pybossa.Auth
}

// Result is the assembled outbound bundle.
type Result struct {
	// Bundle is the ZIP of result files plus one consensus file per
	// question, ready to stream.
	Bundle *bytes.Buffer
	// Upstream retains the final upstream response for header mirroring.
	Upstream *pybossa.UpstreamResponse
	// Consensus reports which branch the degrade policy took.
	Consensus consensus.Status
}

// System runs export requests.
type System interface {
	Handler() *Handler
	Run(ctx context.Context, req Request) (*Result, error)
}

type system struct {
	client  *pybossa.Client
	scratch *scratch.Store
	cfg     config.ConsensusConfig
	logger  *slog.Logger
}

// New creates the export pipeline system.
func New(client *pybossa.Client, store *scratch.Store, cfg config.ConsensusConfig, logger *slog.Logger) System {
	return &system{
		client:  client,
		scratch: store,
		cfg:     cfg,
		logger:  logger.With("system", "exports"),
	}
}

// Handler returns the HTTP handler for the export endpoint.
func (s *system) Handler() *Handler {
	return NewHandler(s, s.cfg, s.logger)
}

// Run executes the pipeline. Validation happens before any upstream call;
// import and metadata failures abort, consensus failures degrade to a
// partial or empty result per the tagged outcome.
func (s *system) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ws, err := s.scratch.Workspace()
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	defer ws.Release()

	taskFiles, _, err := s.client.ImportTaskFiles(ctx, req.ExportURL, ws, req.Auth)
	if err != nil {
		return nil, err
	}

	resultFiles, upstream, err := s.client.ImportResultFiles(ctx, req.ExportURL, ws, req.Format, req.Auth)
	if err != nil {
		return nil, err
	}

	infoURL, projectName, err := pybossa.DeriveInfoURL(req.ExportURL)
	if err != nil {
		return nil, err
	}
	qas, err := s.client.FetchQuestionAnswers(ctx, infoURL, req.Auth)
	if err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(qas))
	categories := make(map[string][]string, len(qas))
	for _, qa := range qas {
		questions = append(questions, qa.Question)
		categories[qa.Question] = qa.Answers
	}

	outcome := consensus.Compute(
		questions,
		categories,
		consensus.Files{
			TaskInfoOnly: taskFiles.TaskInfoOnly,
			Task:         taskFiles.Task,
			TaskRun:      taskFiles.TaskRun,
		},
		req.Model,
		s.options(),
		s.logger,
	)

	consensusFiles, err := consensus.Export(req.Format, outcome, projectName, ws, s.options(), s.logger)
	if err != nil {
		return nil, err
	}

	bundle, err := archive.Build(append(resultFiles, consensusFiles...))
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}

	s.logger.Info("export complete",
		"project", projectName,
		"result_files", len(resultFiles),
		"consensus_files", len(consensusFiles),
	)
	return &Result{Bundle: bundle, Upstream: upstream, Consensus: outcome.Status}, nil
}

func (s *system) options() consensus.Options {
	return consensus.Options{
		TaskKey:   s.cfg.TaskKey,
		Separator: s.cfg.Separator(),
	}
}

func validate(req Request) error {
	if req.ExportURL == "" {
		return ErrMissingExportURL
	}
	if req.Format != pybossa.FormatCSV && req.Format != pybossa.FormatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}
	if !consensus.Registered(req.Model) {
		return fmt.Errorf("%w: %q", consensus.ErrUnknownModel, req.Model)
	}
	return nil
}
