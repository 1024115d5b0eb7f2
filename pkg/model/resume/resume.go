package resume

// Generated is a complete tailored resume assembled by the resume flavor.
// Partial versions arrive while the model is still writing; the final one
// replaces them.
type Generated struct {
	Contact        Contact      `json:"contact,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	Experience     []Experience `json:"experience,omitempty"`
	Skills         SkillGroups  `json:"skills,omitempty"`
	Education      []Education  `json:"education,omitempty"`
	Certifications []string     `json:"certifications,omitempty"`
	Projects       []Project    `json:"projects,omitempty"`
}

// Contact holds the header block of a resume.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience is one employment entry.
type Experience struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []string `json:"bullets,omitempty"`
}

// SkillGroups buckets skills the way the rendered resume groups them.
type SkillGroups struct {
	Technical []string `json:"technical,omitempty"`
	Tools     []string `json:"tools,omitempty"`
	Soft      []string `json:"soft,omitempty"`
}

// Education is one education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Project is one highlighted project.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Empty reports whether the resume carries no content at all. Speculative
// partial parses that decode to nothing are not worth forwarding.
func (g Generated) Empty() bool {
	return g.Contact == (Contact{}) && g.Summary == "" &&
		len(g.Experience) == 0 && len(g.Education) == 0 &&
		len(g.Certifications) == 0 && len(g.Projects) == 0 &&
		len(g.Skills.Technical) == 0 && len(g.Skills.Tools) == 0 &&
		len(g.Skills.Soft) == 0
}
