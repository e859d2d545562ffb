package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/entrypoint"
	"github.com/mrlokans/airspace/internal/storage"
	"github.com/mrlokans/airspace/internal/storage/providers/local"
	"github.com/spf13/cobra"
)

// RunCommand performs a single pipeline run and exits. The exit status
// reflects the outcome so it can be driven by an external cron.
type RunCommand struct {
	LocalDir string
	Timeout  time.Duration

	cfg *config.Config
}

func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{cfg: cfg, Timeout: 10 * time.Minute}
}

func (cmd *RunCommand) Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Fetch, convert and publish the airspace file once",
		Long: `Run the pipeline once: fetch the OpenAir source, convert it to GeoJSON and
upload the payload and its metadata sidecar to every publish target.

Use --local-dir to publish into a local directory instead of the FTP server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Run(c.Context())
		},
	}
	c.Flags().StringVar(&cmd.LocalDir, "local-dir", "", "Publish into this directory instead of the FTP server")
	c.Flags().DurationVar(&cmd.Timeout, "timeout", cmd.Timeout, "Upper bound for the whole run")
	return c
}

func (cmd *RunCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	entrypoint.ConfigureLogging(cmd.cfg.Global.Debug)

	client, err := cmd.storageClient()
	if err != nil {
		return err
	}

	app, err := entrypoint.Build(cmd.cfg, client)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	summary, err := app.Runner.Run(ctx)
	if summary != nil {
		fmt.Println(summary.Message())
	}
	return err
}

func (cmd *RunCommand) storageClient() (storage.Client, error) {
	if cmd.LocalDir != "" {
		if err := os.MkdirAll(cmd.LocalDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", cmd.LocalDir, err)
		}
		return local.NewClient(cmd.LocalDir), nil
	}
	return entrypoint.NewStorageClient(cmd.cfg)
}
