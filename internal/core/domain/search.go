package domain

// RetrievalResult is one ranked answer to a similarity query.
type RetrievalResult struct {
	// Text is the matched chunk text.
	Text string `json:"text"`

	// Metadata is the chunk's provenance.
	Metadata Metadata `json:"metadata"`

	// Similarity is the cosine similarity to the query, in [-1, 1].
	Similarity float64 `json:"similarity"`
}

// IngestReport summarises one ingestion call.
type IngestReport struct {
	// Source is the ingested document's source name.
	Source string `json:"source"`

	// Pages is the number of pages read.
	Pages int `json:"pages"`

	// BlankPages is the number of pages skipped for having no text.
	BlankPages int `json:"blank_pages"`

	// Chunks is the number of chunks written.
	Chunks int `json:"chunks"`

	// EntryIDs lists the generated entry ids in chunk order.
	EntryIDs []string `json:"entry_ids"`
}
