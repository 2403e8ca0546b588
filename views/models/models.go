package models

import (
	"html/template"
	"time"
)

// NoteView represents a note for template rendering
type NoteView struct {
	ID                  string
	Title               string
	Type                string
	Category            string
	Tags                string
	Content             string
	FileRef             string
	TranscriptionStatus string
	IsShared            bool
	SharedWith          string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CountsView carries the dashboard analytics numbers.
type CountsView struct {
	Total int64
	Text  int64
	File  int64
	Audio int64
}

// LandingData is the unauthenticated landing page payload.
type LandingData struct {
	Flashes []string
}

// AuthData backs the login and signup forms.
type AuthData struct {
	Flashes []string
}

// DashboardData backs the dashboard page.
type DashboardData struct {
	Username   string
	Notes      []NoteView
	Rendered   map[string]template.HTML
	Categories []string
	Counts     CountsView
	Flashes    []string
}

// EditData backs the edit form for a single note.
type EditData struct {
	Username string
	Note     NoteView
	Flashes  []string
}

// SearchData backs the search page and its results.
type SearchData struct {
	Username   string
	Notes      []NoteView
	Rendered   map[string]template.HTML
	Categories []string
	Query      string
	Category   string
	Flashes    []string
}
