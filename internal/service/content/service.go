// Package content implements the save path for staged resume items: mapping
// a pending item onto its CMS collection, creating the item, and linking it
// to its parent position where the schema uses a junction table.
package content

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dmaguire/folio/backend/pkg/model/content"
)

// ErrUnknownType is returned for pending items whose type maps to no
// collection.
var ErrUnknownType = errors.New("unknown content type")

// ItemCreator is the slice of the CMS client the save path needs.
type ItemCreator interface {
	CreateItem(ctx context.Context, collection string, data map[string]any) (string, error)
}

// collections maps content types onto Directus collections.
var collections = map[content.Type]string{
	content.TypePosition:       "positions",
	content.TypeAccomplishment: "accomplishments",
	content.TypeSkill:          "skills",
	content.TypeTechnology:     "technologies",
	content.TypeProject:        "projects",
	content.TypeEducation:      "education",
	content.TypeCertification:  "certifications",
	content.TypeCompany:        "companies",
}

// junction describes the M2M link between a collection and positions.
type junction struct {
	collection  string
	parentField string
	childField  string
}

var junctions = map[content.Type]junction{
	content.TypeSkill:      {collection: "positions_skills", parentField: "positions_id", childField: "skills_id"},
	content.TypeTechnology: {collection: "positions_technologies", parentField: "positions_id", childField: "technologies_id"},
}

// Service persists staged content to the CMS.
type Service struct {
	cms        ItemCreator
	invalidate func()
}

// NewService builds the save service. invalidate is called after a
// successful save so the prompt snapshot picks up the new data; nil is
// allowed.
func NewService(cms ItemCreator, invalidate func()) *Service {
	return &Service{cms: cms, invalidate: invalidate}
}

// Save creates the CMS item for a pending entry and returns the assigned
// identifier. When the item data names a parent position, a junction row is
// created as well; a failed junction write is logged but does not fail the
// save, because the item itself already exists and a retry would duplicate
// it.
func (s *Service) Save(ctx context.Context, item content.Pending) (string, error) {
	collection, ok := collections[item.Type]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, item.Type)
	}

	data := make(map[string]any, len(item.Data))
	for k, v := range item.Data {
		if k == "positionId" {
			continue
		}
		data[k] = v
	}

	id, err := s.cms.CreateItem(ctx, collection, data)
	if err != nil {
		return "", fmt.Errorf("create %s item: %w", collection, err)
	}

	if link, ok := junctions[item.Type]; ok {
		if positionID, _ := item.Data["positionId"].(string); positionID != "" {
			row := map[string]any{
				link.parentField: positionID,
				link.childField:  id,
			}
			if _, err := s.cms.CreateItem(ctx, link.collection, row); err != nil {
				log.Printf("[content] junction row for %s %s failed: %v", collection, id, err)
			}
		}
	}

	if s.invalidate != nil {
		s.invalidate()
	}
	log.Printf("[content] saved %s item id=%s", collection, id)
	return id, nil
}
