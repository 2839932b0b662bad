package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

var (
	providerModel  string
	providerAPIKey string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
	Long: `View and change settings stored in ~/.studymate/config.toml.

Environment variables (STUDYMATE_*, OPENAI_API_KEY, GEMINI_API_KEY,
OLLAMA_HOST) and a .env file in the working directory override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set a setting. Lists are comma separated and durations use Go syntax.

Examples:
  studymate config set chunk.size 200
  studymate config set embedding.timeout 45s
  studymate config set ingest.processors dehyphenate,page_numbers`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configProviderCmd = &cobra.Command{
	Use:   "provider <hashing|ollama|openai|gemini>",
	Short: "Configure the embedding provider",
	Long: `Select the embedding provider and check that it answers.

Changing provider changes the vector dimension: run 'studymate clear' and
ingest again afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigProvider,
}

func init() {
	configProviderCmd.Flags().StringVar(&providerModel, "model", "", "embedding model (default depends on provider)")
	configProviderCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (prompted when required and omitted)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configProviderCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunk]")
	cmd.Printf("  Size: %d words\n", settings.Chunk.Size)
	cmd.Printf("  Overlap: %d words\n", settings.Chunk.Overlap)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	cmd.Printf("  Timeout: %s\n", settings.Embedding.Timeout)
	cmd.Printf("  Batch size: %d, concurrency: %d\n", settings.Embedding.BatchSize, settings.Embedding.Concurrency)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.Dir != "" {
		cmd.Printf("  Directory: %s\n", settings.Store.Dir)
	}
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Duplicates: %s\n", settings.Ingest.Duplicates)
	if len(settings.Ingest.Processors) > 0 {
		cmd.Printf("  Processors: %s\n", strings.Join(settings.Ingest.Processors, ", "))
	} else {
		cmd.Println("  Processors: (none)")
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'studymate config provider' or 'studymate config set' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	if err := svc.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("%s restored to default\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	for _, k := range svc.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigProvider(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	provider := domain.AIProvider(args[0])
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrConfiguration, args[0])
	}

	apiKey := providerAPIKey
	if provider.RequiresAPIKey() && apiKey == "" {
		cmd.Printf("Enter %s API key: ", provider)
		apiKey = readPassword()
		cmd.Println()
	}

	if err := svc.SetEmbeddingProvider(provider, providerModel, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	settings, err := svc.Get()
	if err != nil {
		return err
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n",
		settings.Embedding.Provider.Description(), settings.Embedding.Model)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	return readLine(bufio.NewReader(os.Stdin))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
