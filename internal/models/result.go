package models

// RetrievalResult is one ranked retrieval hit. Score is cosine similarity
// against the query embedding; Rank is the position after reranking (1-based).
// Transient, produced per query, never persisted.
type RetrievalResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Source identifies where part of an answer came from.
type Source struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Score    float64  `json:"score,omitempty"`
}

// Answer is the assistant's response to one query.
type Answer struct {
	Response string   `json:"response"`
	Agent    string   `json:"agent"`
	Sources  []Source `json:"sources,omitempty"`
	// Degraded is set when a collaborator failed and the answer was produced
	// on a fallback path (keyword search, no context, mock data).
	Degraded  bool  `json:"degraded,omitempty"`
	QueryTime int64 `json:"query_time_ms"`
}
