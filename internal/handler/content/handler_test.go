package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dmaguire/folio/backend/pkg/model/content"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
)

type fakeSaver struct {
	err  error
	last content.Pending
}

func (f *fakeSaver) Save(_ context.Context, item content.Pending) (string, error) {
	f.last = item
	if f.err != nil {
		return "", f.err
	}
	return "cms-99", nil
}

type fakeSnapshots struct{ err error }

func (f *fakeSnapshots) Snapshot(_ context.Context) (*profile.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &profile.Snapshot{Skills: []profile.Skill{{Name: "Go"}}}, nil
}

func setupRouter(saver Saver, snapshots SnapshotProvider) *chi.Mux {
	r := chi.NewRouter()
	New(saver, snapshots).RegisterRoutes(r)
	return r
}

func TestSaveContent(t *testing.T) {
	saver := &fakeSaver{}
	r := setupRouter(saver, nil)

	payload, _ := json.Marshal(content.Pending{
		ID:     "pending-1",
		Type:   content.TypeSkill,
		Status: content.StatusReady,
		Data:   map[string]any{"name": "Go"},
	})
	req := httptest.NewRequest(http.MethodPost, "/content/save", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["cmsId"] != "cms-99" {
		t.Fatalf("expected cmsId cms-99, got %q", body["cmsId"])
	}
	if saver.last.ID != "pending-1" {
		t.Fatalf("item not forwarded: %+v", saver.last)
	}
}

func TestSaveRejectsUnknownType(t *testing.T) {
	r := setupRouter(&fakeSaver{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/content/save", bytes.NewReader([]byte(`{"type":"hobby","data":{}}`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSaveCMSFailure(t *testing.T) {
	r := setupRouter(&fakeSaver{err: errors.New("cms down")}, nil)
	payload, _ := json.Marshal(content.Pending{Type: content.TypeSkill, Data: map[string]any{"name": "Go"}})
	req := httptest.NewRequest(http.MethodPost, "/content/save", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}

func TestProfileEndpoint(t *testing.T) {
	r := setupRouter(nil, &fakeSnapshots{})
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snap profile.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Skills) != 1 || snap.Skills[0].Name != "Go" {
		t.Fatalf("snapshot mismatch: %+v", snap)
	}
}
