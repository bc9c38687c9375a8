package models

// ListQuery selects one page of a listing. Page is 1-based.
type ListQuery struct {
	Page int `json:"page"`
	Rows int `json:"rows"`
}

// Offset is the number of records to skip for q.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Rows
}

// FilmPage is one page of films plus the total number of stored films.
type FilmPage struct {
	Movies     []*Film `json:"movies"`
	TotalCount int     `json:"totalCount"`
}

// SyncResult reports the outcome of replacing stored films with the
// external source's list.
type SyncResult struct {
	Message      string   `json:"message"`
	SyncedMovies []string `json:"syncedMovies"`
	TotalCount   int      `json:"totalCount"`
}
