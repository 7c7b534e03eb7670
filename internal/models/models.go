package models

import "strings"

// NotSpecified marks a bibliographic field the model could not determine.
const NotSpecified = "Not specified"

// BookRecord holds the bibliographic fields extracted from a book image
type BookRecord struct {
	Title         string `json:"title" yaml:"title" parquet:"title"`
	Author        string `json:"author" yaml:"author" parquet:"author"`
	Cover         string `json:"cover" yaml:"cover" parquet:"cover"`
	Genre         string `json:"genre" yaml:"genre" parquet:"genre"`
	Publisher     string `json:"publisher" yaml:"publisher" parquet:"publisher"`
	YearPublished string `json:"year_published" yaml:"year_published" parquet:"year_published"`
}

// RecordKeys lists the JSON keys of a BookRecord in prompt order.
var RecordKeys = []string{"title", "author", "cover", "genre", "publisher", "year_published"}

// NewBookRecord builds a record from a key/value map, defaulting every
// missing or blank field to NotSpecified.
func NewBookRecord(fields map[string]string) BookRecord {
	get := func(key string) string {
		v := strings.TrimSpace(fields[key])
		if v == "" {
			return NotSpecified
		}
		return v
	}

	return BookRecord{
		Title:         get("title"),
		Author:        get("author"),
		Cover:         get("cover"),
		Genre:         get("genre"),
		Publisher:     get("publisher"),
		YearPublished: get("year_published"),
	}
}
