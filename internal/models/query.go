package models

import "fmt"

// QueryRequest is a user query with optional retrieval controls.
type QueryRequest struct {
	Query string `json:"query"`
	// K is how many passages to retrieve for the Q&A path.
	K int `json:"k,omitempty"`
	// Category restricts retrieval to one article category when set.
	Category string `json:"category,omitempty"`
	// EnhanceQuery toggles domain keyword expansion; nil means enabled.
	EnhanceQuery *bool `json:"enhance_query,omitempty"`
}

// Validate ensures the request has valid fields and sets defaults.
// Returns an error if the query is empty or the category is unknown.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.K <= 0 {
		q.K = 5
	}
	if q.K > 20 {
		q.K = 20
	}
	if q.Category != "" {
		if _, err := ParseCategory(q.Category); err != nil {
			return err
		}
	}
	return nil
}

// Enhance reports whether query expansion is enabled for this request.
func (q *QueryRequest) Enhance() bool {
	return q.EnhanceQuery == nil || *q.EnhanceQuery
}
