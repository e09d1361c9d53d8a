// Package models defines core data structures for articles, chunks, queries, and answers.
package models

import "time"

// Article is one source article in the knowledge base. Articles are created by
// ingestion and read-only afterwards; the chunker consumes them as-is.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`
	Category  Category  `json:"category" db:"category"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	WordCount int       `json:"word_count" db:"word_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Chunk is a contiguous window of an article's text, the unit stored in the
// vector index. Category and Title are inherited from the owning article so
// retrieval results carry attribution without a join.
type Chunk struct {
	ID        string    `json:"id" db:"id"`
	ArticleID string    `json:"article_id" db:"article_id"`
	Index     int       `json:"chunk_index" db:"chunk_index"`
	Text      string    `json:"text" db:"text"`
	Category  Category  `json:"category" db:"category"`
	Title     string    `json:"title" db:"title"`
	Embedding []float32 `json:"-" db:"-"`
}

// ArticleInput is the ingestion record for one article, matching the scraper
// output format: one record per article with id/url, title, full text,
// category, and word count.
type ArticleInput struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Category  string `json:"category,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}
