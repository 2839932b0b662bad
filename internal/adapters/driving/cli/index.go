package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	statsJSON bool
	clearYes  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the index holds",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored chunk",
	Long: `Deletes all stored chunks. The next ingestion fixes the vector dimension
again, so clear the index after switching to a model with a different size.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireIndex(); err != nil {
		return err
	}

	stats, err := ingestService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Entries:   %d\n", stats.Entries)
	cmd.Printf("Sources:   %d\n", stats.Sources)
	if stats.Dimension > 0 {
		cmd.Printf("Dimension: %d\n", stats.Dimension)
	} else {
		cmd.Println("Dimension: (not fixed)")
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := requireIndex(); err != nil {
		return err
	}

	if !clearYes {
		cmd.Print("Remove every stored chunk? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := ingestService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
