package models

// Newsletter is an archived monthly newsletter with its OCR'd text.
type Newsletter struct {
	ID                string `json:"id" yaml:"id" validate:"required"`
	Title             string `json:"title" yaml:"title"`
	Date              string `json:"date" yaml:"date"`
	URL               string `json:"url" yaml:"url"`
	ThumbnailURL      string `json:"thumbnail_url" yaml:"thumbnail_url"`
	Excerpt           string `json:"excerpt" yaml:"excerpt"`
	SearchableContent string `json:"-" yaml:"searchable_content"`
	Month             string `json:"month" yaml:"month"`
	Year              string `json:"year" yaml:"year"`
}
