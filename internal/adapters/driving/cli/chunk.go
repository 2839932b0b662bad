package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Preview how a document is split into chunks",
	Long: `Reads the file and prints the chunks ingestion would store, using the
configured chunk size, overlap and page processors. Nothing is embedded or
stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if err := requireIndex(); err != nil {
		return err
	}

	doc, err := requireSources().Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	chunks, err := ingestService.Preview(cmd.Context(), doc)
	if err != nil {
		return err
	}

	if chunkJSON {
		data, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal chunks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputChunks(cmd, doc, chunks)
	return nil
}

func outputChunks(cmd *cobra.Command, doc domain.Document, chunks []domain.Chunk) {
	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Title.Render(fmt.Sprintf("%s: %d pages (%d blank), %d chunks",
		doc.Source, len(doc.Pages), doc.BlankPages(), len(chunks))))
	cmd.Println()
	for _, c := range chunks {
		cmd.Printf("  %s %s\n",
			st.Source.Render(fmt.Sprintf("#%d", c.Index)),
			st.Muted.Render(fmt.Sprintf("page %d, words %d-%d", c.Page, c.StartWord, c.EndWord)))
		cmd.Println(st.Body.Render(c.Text))
		cmd.Println()
	}
}
