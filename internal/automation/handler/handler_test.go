package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"primus_backend/internal/automation"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
	"primus_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeWorkflowStore struct {
	workflows []automation.Workflow
	toggled   map[uuid.UUID]bool
	orgSeen   uuid.UUID
}

func (f *fakeWorkflowStore) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]automation.Workflow, error) {
	f.orgSeen = orgID
	return f.workflows, nil
}

func (f *fakeWorkflowStore) SetEnabled(_ context.Context, orgID, id uuid.UUID, enabled bool) error {
	f.orgSeen = orgID
	for i := range f.workflows {
		if f.workflows[i].ID == id {
			if f.toggled == nil {
				f.toggled = make(map[uuid.UUID]bool)
			}
			f.toggled[id] = enabled
			return nil
		}
	}
	return apperr.NotFound("workflow not found")
}

func newTestRouter(store WorkflowStore, orgID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewModule(store, validator.New(), orgID, logger.New("test"))
	engine := gin.New()
	engine.GET("/automations", m.handler.ListWorkflows)
	engine.PATCH("/automations/:id", m.handler.SetEnabled)
	return engine
}

func TestListWorkflowsScopedToOrganization(t *testing.T) {
	orgID := uuid.New()
	store := &fakeWorkflowStore{workflows: []automation.Workflow{
		{ID: uuid.New(), Name: "welcome", Trigger: automation.TriggerLeadCreated, Enabled: true},
		{ID: uuid.New(), Name: "nurture", Trigger: automation.TriggerCronDaily},
	}}
	router := newTestRouter(store, orgID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/automations", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if store.orgSeen != orgID {
		t.Errorf("list should be scoped to the caller's organization, got %s", store.orgSeen)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "welcome") || !strings.Contains(body, "nurture") {
		t.Errorf("response should include both workflows: %s", body)
	}
}

func TestSetEnabledTogglesWorkflow(t *testing.T) {
	wf := automation.Workflow{ID: uuid.New(), Name: "welcome", Enabled: true}
	store := &fakeWorkflowStore{workflows: []automation.Workflow{wf}}
	router := newTestRouter(store, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/automations/"+wf.ID.String(), strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if enabled, ok := store.toggled[wf.ID]; !ok || enabled {
		t.Fatalf("workflow should have been disabled, toggled=%v", store.toggled)
	}
}

func TestSetEnabledUnknownWorkflowReturnsNotFound(t *testing.T) {
	store := &fakeWorkflowStore{}
	router := newTestRouter(store, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/automations/"+uuid.NewString(), strings.NewReader(`{"enabled":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestSetEnabledRequiresEnabledField(t *testing.T) {
	wf := automation.Workflow{ID: uuid.New(), Name: "welcome"}
	store := &fakeWorkflowStore{workflows: []automation.Workflow{wf}}
	router := newTestRouter(store, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/automations/"+wf.ID.String(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if len(store.toggled) != 0 {
		t.Fatal("a rejected request must not toggle anything")
	}
}
