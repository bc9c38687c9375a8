package models

import "time"

// Film is a Star Wars film record. ID is a UUID assigned by the database.
// ArtworkKey is the object-storage key of the uploaded poster, if any.
type Film struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  string    `json:"release_date"`
	Characters   []string  `json:"characters"`
	Planets      []string  `json:"planets"`
	Starships    []string  `json:"starships"`
	Vehicles     []string  `json:"vehicles"`
	Species      []string  `json:"species"`
	URL          string    `json:"url"`
	Created      time.Time `json:"created"`
	Edited       time.Time `json:"edited"`
	ArtworkKey   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FilmPatch carries a partial update; nil fields are left untouched.
type FilmPatch struct {
	Title        *string    `json:"title"`
	EpisodeID    *int       `json:"episode_id"`
	OpeningCrawl *string    `json:"opening_crawl"`
	Director     *string    `json:"director"`
	Producer     *string    `json:"producer"`
	ReleaseDate  *string    `json:"release_date"`
	Characters   []string   `json:"characters"`
	Planets      []string   `json:"planets"`
	Starships    []string   `json:"starships"`
	Vehicles     []string   `json:"vehicles"`
	Species      []string   `json:"species"`
	URL          *string    `json:"url"`
	Created      *time.Time `json:"created"`
	Edited       *time.Time `json:"edited"`
}

// Apply merges the set fields of p onto f.
func (p *FilmPatch) Apply(f *Film) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.EpisodeID != nil {
		f.EpisodeID = *p.EpisodeID
	}
	if p.OpeningCrawl != nil {
		f.OpeningCrawl = *p.OpeningCrawl
	}
	if p.Director != nil {
		f.Director = *p.Director
	}
	if p.Producer != nil {
		f.Producer = *p.Producer
	}
	if p.ReleaseDate != nil {
		f.ReleaseDate = *p.ReleaseDate
	}
	if p.Characters != nil {
		f.Characters = p.Characters
	}
	if p.Planets != nil {
		f.Planets = p.Planets
	}
	if p.Starships != nil {
		f.Starships = p.Starships
	}
	if p.Vehicles != nil {
		f.Vehicles = p.Vehicles
	}
	if p.Species != nil {
		f.Species = p.Species
	}
	if p.URL != nil {
		f.URL = *p.URL
	}
	if p.Created != nil {
		f.Created = *p.Created
	}
	if p.Edited != nil {
		f.Edited = *p.Edited
	}
}
