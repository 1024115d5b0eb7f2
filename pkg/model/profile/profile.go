package profile

import "time"

// Snapshot is a point-in-time copy of the CMS profile collections used to
// build system prompts. It is read-only once fetched.
type Snapshot struct {
	Positions      []Position      `json:"positions"`
	Skills         []Skill         `json:"skills"`
	Technologies   []Technology    `json:"technologies"`
	Projects       []Project       `json:"projects"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Companies      []Company       `json:"companies"`
	FetchedAt      time.Time       `json:"fetchedAt"`
}

// Position mirrors the CMS positions collection.
type Position struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Accomplishments []string `json:"accomplishments,omitempty"`
}

// Skill mirrors the CMS skills collection.
type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Technology mirrors the CMS technologies collection.
type Technology struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project mirrors the CMS projects collection.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Education mirrors the CMS education collection.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	EndYear     string `json:"end_year,omitempty"`
}

// Certification mirrors the CMS certifications collection.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

// Company mirrors the CMS companies collection.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}
