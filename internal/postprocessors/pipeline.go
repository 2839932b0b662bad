package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/studymate/internal/core/domain"
	"github.com/custodia-labs/studymate/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PageProcessor = (*Pipeline)(nil)

// Pipeline chains multiple PageProcessors and runs them in order.
type Pipeline struct {
	processors []driven.PageProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PageProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "pipeline"
}

// Process runs the document through all processors in order.
func (p *Pipeline) Process(ctx context.Context, doc domain.Document) (domain.Document, error) {
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return domain.Document{}, err
		}
		out, err := processor.Process(ctx, doc)
		if err != nil {
			return domain.Document{}, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		if len(out.Pages) != len(doc.Pages) {
			return domain.Document{}, fmt.Errorf("processor %s: page count changed from %d to %d",
				processor.Name(), len(doc.Pages), len(out.Pages))
		}
		doc = out
	}
	return doc, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PageProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// mapPages applies fn to every page of a copy of doc.
func mapPages(doc domain.Document, fn func(string) string) domain.Document {
	pages := make([]string, len(doc.Pages))
	for i, page := range doc.Pages {
		pages[i] = fn(page)
	}
	return domain.Document{Source: doc.Source, Pages: pages}
}
