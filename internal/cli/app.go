package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/audit"
	"github.com/florinato/mongoagent/internal/config"
	"github.com/florinato/mongoagent/internal/executor"
	"github.com/florinato/mongoagent/internal/llm"
	"github.com/florinato/mongoagent/internal/logging"
	"github.com/florinato/mongoagent/internal/service"
	"github.com/florinato/mongoagent/internal/session"
)

// app holds the collaborators shared by the chat, ask and serve commands.
type app struct {
	service *service.Service
	trace   *logging.Trace
	audit   *audit.Store
	closers []func()
}

// newApp wires the agent stack from cfg. Close must be called when done.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	client, stopLLM, err := llm.Open(ctx, llm.Options{
		Provider:        cfg.LLM.Provider,
		Model:           cfg.LLM.Model,
		APIKey:          cfg.LLM.APIKey,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring LLM: %w", err)
	}
	a.closers = append(a.closers, stopLLM)

	exec := executor.New(executor.Config{
		Shell:   cfg.Mongo.Shell,
		Binary:  cfg.Mongo.Binary,
		URI:     cfg.Mongo.URI,
		Timeout: cfg.Mongo.ParseTimeout(),
	}, nil)

	trace, err := logging.OpenTrace(cfg.Log.TraceFile, cfg.Log.IsResetOnStart())
	if err != nil {
		return nil, err
	}
	a.trace = trace
	a.closers = append(a.closers, func() { _ = trace.Close() })

	opts := []agent.Option{
		agent.WithTrace(trace),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithLabelInference(cfg.Agent.InferLabels),
		agent.WithDatabase(cfg.Agent.Database),
	}
	if cfg.Audit.Enabled {
		store, err := audit.Open(config.ExpandHome(cfg.Audit.Path))
		if err != nil {
			return nil, err
		}
		a.audit = store
		a.closers = append(a.closers, func() { _ = store.Close() })
		opts = append(opts, agent.WithAuditor(store))
	}

	ag, err := agent.New(client, exec, opts...)
	if err != nil {
		return nil, err
	}

	var svcOpts []service.Option
	if cfg.Transcripts.Enabled {
		svcOpts = append(svcOpts, service.WithArchive(session.NewArchive(config.ExpandHome(cfg.Transcripts.Dir))))
	}
	a.service = service.New(ag, svcOpts...)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openAudit opens the configured audit database for reading.
func openAudit(cfg *config.Config) (*audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, errors.New("the audit trail is disabled (audit.enabled)")
	}
	return audit.Open(config.ExpandHome(cfg.Audit.Path))
}
