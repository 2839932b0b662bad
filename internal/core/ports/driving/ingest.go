package driving

import (
	"context"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// IngestService turns documents into stored, embedded chunk entries and
// manages the index they are stored in.
type IngestService interface {
	// Ingest chunks, embeds and stores every page of doc.
	// Either every chunk is stored or none is.
	Ingest(ctx context.Context, doc domain.Document) (domain.IngestReport, error)

	// Preview returns the chunks Ingest would store, without embedding.
	Preview(ctx context.Context, doc domain.Document) ([]domain.Chunk, error)

	// Stats summarises the index.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Clear removes every stored entry.
	Clear(ctx context.Context) error
}
