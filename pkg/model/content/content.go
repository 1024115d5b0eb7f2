package content

import "time"

// Type enumerates the resume item kinds the content builder can stage.
type Type string

const (
	TypePosition       Type = "position"
	TypeAccomplishment Type = "accomplishment"
	TypeSkill          Type = "skill"
	TypeTechnology     Type = "technology"
	TypeProject        Type = "project"
	TypeEducation      Type = "education"
	TypeCertification  Type = "certification"
	TypeCompany        Type = "company"
)

// Valid reports whether t is one of the known content types.
func (t Type) Valid() bool {
	switch t {
	case TypePosition, TypeAccomplishment, TypeSkill, TypeTechnology,
		TypeProject, TypeEducation, TypeCertification, TypeCompany:
		return true
	}
	return false
}

// Status tracks a staged item through its lifecycle.
type Status string

const (
	StatusDraft Status = "draft"
	StatusReady Status = "ready"
	StatusSaved Status = "saved"
	StatusError Status = "error"
)

// Pending is a resume item proposed by the assistant but not yet written to
// the CMS. Data is free-form key/value matching the target collection schema
// for Type.
type Pending struct {
	ID                  string         `json:"id"`
	Type                Type           `json:"type"`
	Status              Status         `json:"status"`
	Data                map[string]any `json:"data"`
	DuplicateWarning    string         `json:"duplicateWarning,omitempty"`
	ClarificationNeeded []string       `json:"clarificationNeeded,omitempty"`
	Error               string         `json:"error,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// Saved records a pending item after it has been persisted to the CMS.
type Saved struct {
	Pending
	CMSID   string    `json:"cmsId"`
	SavedAt time.Time `json:"savedAt"`
}
