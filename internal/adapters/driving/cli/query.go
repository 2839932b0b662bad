package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Find the stored chunks most similar to a question",
	Long: `Embeds the question with the configured provider and ranks every stored
chunk by cosine similarity. Ties keep insertion order.

If the provider or the store fails, the command reports that no results are
available instead of failing.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := requireIndex(); err != nil {
		return err
	}

	results, err := retrievalService.QuerySimilar(cmd.Context(), args[0], queryTopK)
	if err != nil {
		var rerr *domain.RetrievalError
		if !errors.As(err, &rerr) {
			return fmt.Errorf("query failed: %w", err)
		}
		st := stylesFor(cmd.ErrOrStderr())
		fmt.Fprintln(cmd.ErrOrStderr(), st.Warning.Render(
			fmt.Sprintf("No results available (%s failed): %v", rerr.Stage, rerr.Err)))
		results = []domain.RetrievalResult{}
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryText(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Results:"))
	cmd.Println()
	for i, r := range results {
		// Format: [N] source #index (similarity)
		cmd.Printf("  [%d] %s %s\n", i+1,
			st.Source.Render(fmt.Sprintf("%s #%d", r.Metadata.Source, r.Metadata.Index)),
			st.Score.Render(fmt.Sprintf("(%.3f)", r.Similarity)))
		cmd.Println(st.Body.Render(r.Text))
		cmd.Println()
	}
	return nil
}
