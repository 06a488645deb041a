package app

import (
	"context"
	"fmt"

	"github.com/ctrlmap-tools/cmapsync/internal/client"
	"github.com/ctrlmap-tools/cmapsync/internal/config"
	"github.com/ctrlmap-tools/cmapsync/internal/converter"
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/ctrlmap-tools/cmapsync/internal/output"
	"github.com/ctrlmap-tools/cmapsync/internal/resolver"
	"github.com/ctrlmap-tools/cmapsync/internal/utils"
)

// Orchestrator runs the export pipeline for a set of domains: resolve the
// document graph, write it to disk, collect per-domain outcomes. Domains
// are independent: a connectivity failure in one does not stop its
// siblings, while an authentication failure aborts the remaining run.
type Orchestrator struct {
	cfg       *config.Config
	transport domain.Transport
	resolver  *resolver.Resolver
	writer    *output.Writer
	logger    *utils.Logger
}

// OrchestratorOptions configures an Orchestrator. Transport overrides the
// session built from the config, which tests use to inject stubs.
type OrchestratorOptions struct {
	Config       *config.Config
	Transport    domain.Transport
	Logger       *utils.Logger
	ShowProgress bool
}

// NewOrchestrator wires the pipeline from a validated config.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	}

	transport := opts.Transport
	if transport == nil {
		transport = client.NewSession(client.SessionOptions{
			BaseURL: cfg.API.BaseURL,
			Tenant:  cfg.API.Tenant,
			Token:   cfg.API.Token,
			Timeout: cfg.HTTP.Timeout,
		})
	}

	var retrier *client.Retrier
	if cfg.HTTP.MaxRetries > 0 {
		retrier = client.NewRetrier(client.RetrierOptions{MaxRetries: cfg.HTTP.MaxRetries})
	}

	res := resolver.New(transport, resolver.Options{
		Converter:    converter.New(logger),
		Retrier:      retrier,
		Logger:       logger,
		ShowProgress: opts.ShowProgress,
	})

	writer := output.NewWriter(output.WriterOptions{
		RootDir:     cfg.Output.Directory,
		Force:       cfg.Output.Force,
		KeepRawJSON: cfg.Output.KeepRawJSON,
		Logger:      logger,
	})

	return &Orchestrator{
		cfg:       cfg,
		transport: transport,
		resolver:  res,
		writer:    writer,
		logger:    logger.WithComponent("app"),
	}, nil
}

// DomainOutcome is the result of one domain's export.
type DomainOutcome struct {
	Kind    domain.Kind
	Report  *domain.WriteReport
	Skipped []domain.SkippedItem
	Err     error
}

// RunSummary aggregates all domain outcomes of one run.
type RunSummary struct {
	Outcomes []DomainOutcome
}

// Conflicts lists every write conflict across domains.
func (s *RunSummary) Conflicts() []string {
	var paths []string
	for _, o := range s.Outcomes {
		if o.Report != nil {
			paths = append(paths, o.Report.Conflicts...)
		}
	}
	return paths
}

// Failed reports whether any domain ended with an error.
func (s *RunSummary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// Run exports the requested domains in order. The returned error is
// non-nil only for run-fatal failures; per-domain failures are carried in
// the summary.
func (o *Orchestrator) Run(ctx context.Context, kinds []domain.Kind) (*RunSummary, error) {
	summary := &RunSummary{}

	for _, kind := range kinds {
		logger := o.logger.WithDomain(string(kind))
		logger.Info().Msg("exporting")

		outcome := o.exportDomain(ctx, kind)
		summary.Outcomes = append(summary.Outcomes, outcome)

		if outcome.Err != nil {
			if domain.IsFatal(outcome.Err) {
				logger.Error().Err(outcome.Err).Msg("run aborted")
				return summary, outcome.Err
			}
			logger.Error().Err(outcome.Err).Msg("domain export failed")
			continue
		}

		logger.Info().
			Int("documents", outcome.Report.Created+outcome.Report.Overwritten+outcome.Report.Unchanged).
			Int("skipped", len(outcome.Skipped)).
			Int("conflicts", len(outcome.Report.Conflicts)).
			Msg("domain exported")
	}

	return summary, nil
}

func (o *Orchestrator) exportDomain(ctx context.Context, kind domain.Kind) DomainOutcome {
	outcome := DomainOutcome{Kind: kind}

	result, err := o.resolver.Resolve(ctx, kind)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Skipped = result.Skipped

	report, err := o.writer.Write(result)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Report = report
	return outcome
}

// Close releases the underlying transport.
func (o *Orchestrator) Close() error {
	return o.transport.Close()
}
