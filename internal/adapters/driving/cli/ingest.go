package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/logger"
)

var (
	ingestSource string
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Chunk, embed and store documents",
	Long: `Reads each file (or every supported file under each directory), splits its
pages into overlapping word windows, embeds them in one batch and stores the
result. A file is stored completely or not at all.

Files whose source is already indexed are skipped unless the duplicate
policy is "append" (studymate config set ingest.duplicates append).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "",
		"source name recorded with the chunks (single file only; default file name)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output reports as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireIndex(); err != nil {
		return err
	}

	paths, err := requireSources().Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}
	if ingestSource != "" && len(paths) > 1 {
		return fmt.Errorf("%w: --source needs exactly one file, got %d", domain.ErrInvalidInput, len(paths))
	}

	st := stylesFor(cmd.OutOrStdout())
	reports := make([]domain.IngestReport, 0, len(paths))
	var failed []error
	for _, path := range paths {
		report, err := ingestFile(cmd.Context(), path, ingestSource)
		switch {
		case errors.Is(err, domain.ErrDuplicateSource):
			if !ingestJSON {
				cmd.Printf("%s %s\n", st.Warning.Render("skipped"), path)
			}
		case err != nil:
			logger.Error("%s: %v", path, err)
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
		default:
			reports = append(reports, report)
			if !ingestJSON {
				printIngestReport(cmd, st, report)
			}
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal reports: %w", err)
		}
		cmd.Println(string(data))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(failed), len(paths), errors.Join(failed...))
	}
	return nil
}

// ingestFile loads path and ingests it under source, or the file name when
// source is empty.
func ingestFile(ctx context.Context, path, source string) (domain.IngestReport, error) {
	doc, err := requireSources().Load(ctx, path)
	if err != nil {
		return domain.IngestReport{}, err
	}
	if source != "" {
		doc.Source = source
	}
	return ingestService.Ingest(ctx, doc)
}

func printIngestReport(cmd *cobra.Command, st styles, r domain.IngestReport) {
	cmd.Printf("%s %s: %d chunks from %d pages",
		st.Success.Render("stored"), filepath.Base(r.Source), r.Chunks, r.Pages)
	if r.BlankPages > 0 {
		cmd.Printf(" %s", st.Muted.Render(fmt.Sprintf("(%d blank)", r.BlankPages)))
	}
	cmd.Println()
}
