package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/airspace/internal/cli"
	"github.com/mrlokans/airspace/internal/config"
	"github.com/mrlokans/airspace/internal/entrypoint"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()

	serve := func(cmd *cobra.Command, _ []string) {
		entrypoint.Run(cfg, Version)
	}

	rootCmd := &cobra.Command{
		Use:   "airspace",
		Short: "Publish the OpenAir airspace file as GeoJSON over FTP",
		Long: `Fetches the French OpenAir airspace file, converts it to GeoJSON and uploads
it with a metadata sidecar to every configured FTP directory.

Without a command the HTTP server is started.`,
		Args: cobra.NoArgs,
		Run:  serve,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server and the sync scheduler (default)",
			Args:  cobra.NoArgs,
			Run:   serve,
		},
		cli.NewRunCommand(cfg).Command(),
		cli.NewConvertCommand(cfg).Command(),
		cli.NewHashTokenCommand().Command(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Printf("airspace %s (%s)\n", Version, Commit)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
