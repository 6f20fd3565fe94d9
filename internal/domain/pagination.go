package domain

// PaginationParams holds the page-based parameters of Summit API list queries.
type PaginationParams struct {
	Page    int
	PerPage int
}

// DefaultPerPage is the page size requested from the Summit API.
const DefaultPerPage = 100

// Next returns the parameters of the following page.
func (p PaginationParams) Next() PaginationParams {
	return PaginationParams{Page: p.Page + 1, PerPage: p.PerPage}
}

// Page is the Summit API list envelope.
type Page[T any] struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Data        []T `json:"data"`
}

// HasMoreAfter reports whether pages remain after the requested one,
// ignoring the echoed current_page. An empty page ends the walk.
func (p *Page[T]) HasMoreAfter(requested int) bool {
	return len(p.Data) > 0 && requested < p.LastPage
}
