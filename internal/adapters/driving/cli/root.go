// Package cli provides the studymate command line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studymate/internal/core/ports/driving"
	"github.com/custodia-labs/studymate/internal/logger"
	"github.com/custodia-labs/studymate/internal/normalisers"
)

// version is set by Execute from build information.
var version = "dev"

// Global flags.
var (
	configPath string
	dataDir    string
	verbose    bool
	noConfig   bool
)

// Services used by commands. Wired lazily on first use unless injected with
// SetServices.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	pageSources      *normalisers.Registry
)

// Services bundles the driving ports used by the CLI.
type Services struct {
	Settings  driving.SettingsService
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Sources   *normalisers.Registry
}

// SetServices injects pre-built services. Nil fields are wired on demand.
func SetServices(s *Services) {
	settingsService = s.Settings
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	pageSources = s.Sources
}

var rootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "Index lecture documents and retrieve context for questions",
	Long: `studymate splits lecture slides and notes into overlapping word windows,
embeds them and stores the vectors locally, so questions can be answered
from the most similar passages.

Supported inputs: PDF, Markdown and plain text.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeAll()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.studymate/config.toml)")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the vector store")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
	flags.BoolVar(&noConfig, "no-config", false, "ignore the config file and use defaults plus environment")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute(v string) error {
	if v != "" {
		version = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeAll(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}
