package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/converters"
	"github.com/mrlokans/airspace/internal/metadata"
	"github.com/spf13/cobra"
)

// ConvertCommand converts a local OpenAir file without publishing anything.
type ConvertCommand struct {
	Input        string
	Output       string
	Backend      string
	SkipFailures bool
	Metadata     bool

	cfg *config.Config
}

func NewConvertCommand(cfg *config.Config) *ConvertCommand {
	return &ConvertCommand{
		cfg:          cfg,
		Backend:      string(cfg.Converter.Backend),
		SkipFailures: cfg.Converter.SkipFailures,
	}
}

func (cmd *ConvertCommand) Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a local OpenAir file to GeoJSON",
		Example: `  airspace convert france.txt > france.geojson
  airspace convert france.txt -o france.geojson --metadata
  airspace convert france.txt --backend remote`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			cmd.Input = args[0]
			return cmd.Run(c.Context(), c.OutOrStdout(), c.ErrOrStderr())
		},
	}
	c.Flags().StringVarP(&cmd.Output, "output", "o", "", "Write GeoJSON to this file instead of stdout")
	c.Flags().StringVar(&cmd.Backend, "backend", cmd.Backend, "Converter backend: local or remote")
	c.Flags().BoolVar(&cmd.SkipFailures, "skip-failures", cmd.SkipFailures, "Skip malformed airspace records")
	c.Flags().BoolVar(&cmd.Metadata, "metadata", false, "Print the metadata sidecar to stderr")
	return c
}

func (cmd *ConvertCommand) Run(ctx context.Context, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Input, err)
	}

	convCfg := cmd.cfg.Converter
	convCfg.Backend = config.Backend(cmd.Backend)
	convCfg.SkipFailures = cmd.SkipFailures

	converter, err := converters.New(convCfg)
	if err != nil {
		return err
	}

	fc, err := converter.Convert(ctx, string(raw))
	if err != nil {
		return err
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	if cmd.Output != "" {
		if err := os.WriteFile(cmd.Output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
		}
		fmt.Fprintf(stderr, "Wrote %d airspaces to %s\n", len(fc.Features), cmd.Output)
	} else {
		if _, err := stdout.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	if cmd.Metadata {
		md := metadata.NewExtractor().Extract(string(raw), cmd.Input)
		sidecar, err := json.Marshal(md)
		if err != nil {
			return err
		}
		fmt.Fprintln(stderr, string(sidecar))
	}
	return nil
}
