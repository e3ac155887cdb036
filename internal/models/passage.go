package models

// StoredPassage is a document passage read from the embedding store,
// paired with its precomputed embedding vector. The store owns these
// rows; this application only reads them.
type StoredPassage struct {
	Vector  []float32
	Content string
}

// ScoredPassage is a retrieval result: a passage content with its
// cosine similarity against the query embedding, in [-1, 1].
// Transient, produced per query.
type ScoredPassage struct {
	Score   float64
	Content string
}
