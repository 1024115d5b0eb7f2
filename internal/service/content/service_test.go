package content

import (
	"context"
	"errors"
	"testing"

	"github.com/dmaguire/folio/backend/pkg/model/content"
)

type fakeCreator struct {
	created []struct {
		collection string
		data       map[string]any
	}
	failOn string
}

func (f *fakeCreator) CreateItem(_ context.Context, collection string, data map[string]any) (string, error) {
	if collection == f.failOn {
		return "", errors.New("cms rejected")
	}
	f.created = append(f.created, struct {
		collection string
		data       map[string]any
	}{collection, data})
	return "cms-1", nil
}

func TestSaveCreatesItem(t *testing.T) {
	creator := &fakeCreator{}
	invalidated := false
	svc := NewService(creator, func() { invalidated = true })

	id, err := svc.Save(context.Background(), content.Pending{
		Type: content.TypeProject,
		Data: map[string]any{"name": "folio", "url": "https://example.dev"},
	})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if id != "cms-1" {
		t.Fatalf("expected cms-1, got %q", id)
	}
	if len(creator.created) != 1 || creator.created[0].collection != "projects" {
		t.Fatalf("unexpected creates: %+v", creator.created)
	}
	if !invalidated {
		t.Fatal("expected cache invalidation after save")
	}
}

func TestSaveCreatesJunctionRow(t *testing.T) {
	creator := &fakeCreator{}
	svc := NewService(creator, nil)

	_, err := svc.Save(context.Background(), content.Pending{
		Type: content.TypeSkill,
		Data: map[string]any{"name": "Go", "positionId": "pos-7"},
	})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if len(creator.created) != 2 {
		t.Fatalf("expected item + junction, got %d creates", len(creator.created))
	}
	if _, ok := creator.created[0].data["positionId"]; ok {
		t.Fatal("positionId must not leak into the item payload")
	}
	link := creator.created[1]
	if link.collection != "positions_skills" {
		t.Fatalf("unexpected junction collection %s", link.collection)
	}
	if link.data["positions_id"] != "pos-7" || link.data["skills_id"] != "cms-1" {
		t.Fatalf("junction row mismatch: %+v", link.data)
	}
}

func TestSaveUnknownType(t *testing.T) {
	svc := NewService(&fakeCreator{}, nil)
	if _, err := svc.Save(context.Background(), content.Pending{Type: "hobby"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSaveCMSFailure(t *testing.T) {
	svc := NewService(&fakeCreator{failOn: "skills"}, nil)
	if _, err := svc.Save(context.Background(), content.Pending{
		Type: content.TypeSkill,
		Data: map[string]any{"name": "Go"},
	}); err == nil {
		t.Fatal("expected error when item create fails")
	}
}

func TestSaveJunctionFailureIsNonFatal(t *testing.T) {
	svc := NewService(&fakeCreator{failOn: "positions_skills"}, nil)
	id, err := svc.Save(context.Background(), content.Pending{
		Type: content.TypeSkill,
		Data: map[string]any{"name": "Go", "positionId": "pos-7"},
	})
	if err != nil {
		t.Fatalf("junction failure must not fail the save: %v", err)
	}
	if id != "cms-1" {
		t.Fatalf("expected item id, got %q", id)
	}
}
