package entrypoint

import (
	"errors"
	"fmt"

	"github.com/mrlokans/airspace/internal/audit"
	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/converters"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/mrlokans/airspace/internal/metrics"
	"github.com/mrlokans/airspace/internal/pipeline"
	"github.com/mrlokans/airspace/internal/publisher"
	"github.com/mrlokans/airspace/internal/source"
	"github.com/mrlokans/airspace/internal/storage"
	"github.com/mrlokans/airspace/internal/storage/providers/ftp"
)

// App holds the wired pipeline components.
type App struct {
	Pipeline *pipeline.Pipeline
	Runner   *pipeline.Runner
	Metrics  *metrics.Metrics
	Auditor  *audit.Auditor // nil when AUDIT_DIR is empty
}

// NewStorageClient returns the FTP client for the configured endpoint.
func NewStorageClient(cfg *config.Config) (storage.Client, error) {
	if cfg.FTP.Host == "" {
		return nil, errors.New("FTP_SERVER_NAME_HEATMAP is not set")
	}
	if cfg.FTP.User == "" {
		return nil, errors.New("FTP_LOGIN_HEATMAP is not set")
	}
	return ftp.NewClient(cfg.FTP.Addr(), cfg.FTP.User, cfg.FTP.Password, cfg.FTP.Timeout), nil
}

// Build wires fetcher, extractor, converter and publisher into a runner
// publishing through client.
func Build(cfg *config.Config, client storage.Client) (*App, error) {
	targets, err := cfg.PublishTargets()
	if err != nil {
		return nil, err
	}

	converter, err := converters.New(cfg.Converter)
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}

	p := pipeline.New(
		cfg.Source.URL,
		targets,
		source.NewClient(cfg.Source.Timeout),
		metadata.NewExtractor(),
		converter,
		publisher.NewPublisher(client, cfg.FTP.StagedUploads),
	)

	app := &App{
		Pipeline: p,
		Metrics:  metrics.New(),
	}

	// A nil *audit.Auditor must not reach the runner as a non-nil interface
	if cfg.Audit.Dir != "" {
		app.Auditor = audit.NewAuditor(cfg.Audit.Dir)
		app.Runner = pipeline.NewRunner(p, app.Auditor, app.Metrics)
	} else {
		app.Runner = pipeline.NewRunner(p, nil, app.Metrics)
	}

	return app, nil
}
