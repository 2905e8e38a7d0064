package models

// Note represents a single note stored in the vector database.
type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SearchResult is one entry returned by the notes listing/search endpoint.
// Score is only present for similarity search; unfiltered listing leaves it nil.
type SearchResult struct {
	Text  string   `json:"text"`
	Score *float32 `json:"score,omitempty"`
}

// ListNotesResponse is the structure for the response of the GET /notes endpoint.
type ListNotesResponse struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}
