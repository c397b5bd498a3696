package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wirasakti/partmap/api/middleware"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	"github.com/wirasakti/partmap/internal/workspace"
	"github.com/wirasakti/partmap/pkg/config"
)

func testWorkspace(t *testing.T, userID uuid.UUID, withImage bool) (*workspace.Store, *workspace.Workspace) {
	t.Helper()

	items := []catalog.Item{
		{ID: "item-a", PartName: "Bracket", PartNo: "BD010"},
		{ID: "item-b", PartName: "Bolt M10", PartNo: "X-22"},
	}
	ws := workspace.New(userID, items, 5)
	if withImage {
		ws.SetImage(&workspace.ImageState{
			Natural: geometry.Size{Width: 1600, Height: 1200},
			Display: geometry.Size{Width: 800, Height: 600},
			Format:  "png",
		})
	}

	store := workspace.NewStore()
	store.Put(ws)
	return store, ws
}

func workspaceRouter(store *workspace.Store) http.Handler {
	r := chi.NewRouter()
	r.Route("/workspaces/{workspaceId}", func(r chi.Router) {
		r.Post("/tags", TagCreate(store, nil))
		r.Get("/cart", CartFetch(store, nil))
		r.Post("/export/sheet", ExportSheet(store, config.ExportConfig{CompanyName: "ACME", SheetName: "Supplier Maker Layout"}, nil))
	})
	return r
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestTagCreateUpdatesCart(t *testing.T) {
	userID := uuid.New()
	store, ws := testWorkspace(t, userID, true)
	router := workspaceRouter(store)

	body := []byte(`{"x":400,"y":300,"item_ids":["item-a","item-b"]}`)
	req := authedRequest(http.MethodPost, "/workspaces/"+ws.ID.String()+"/tags", body, userID)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Tag struct {
				ID       string            `json:"id"`
				Position geometry.Fraction `json:"position"`
			} `json:"tag"`
			Cart struct {
				Lines []struct {
					Quantity int `json:"quantity"`
				} `json:"lines"`
			} `json:"cart"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Tag.Position.FX != 0.5 || envelope.Data.Tag.Position.FY != 0.5 {
		t.Fatalf("expected centered fraction, got %+v", envelope.Data.Tag.Position)
	}
	if len(envelope.Data.Cart.Lines) != 2 {
		t.Fatalf("expected two cart lines, got %d", len(envelope.Data.Cart.Lines))
	}
}

func TestTagCreateWithoutImage(t *testing.T) {
	userID := uuid.New()
	store, ws := testWorkspace(t, userID, false)
	router := workspaceRouter(store)

	body := []byte(`{"x":10,"y":10,"item_ids":["item-a"]}`)
	req := authedRequest(http.MethodPost, "/workspaces/"+ws.ID.String()+"/tags", body, userID)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWorkspaceOwnershipEnforced(t *testing.T) {
	owner := uuid.New()
	store, ws := testWorkspace(t, owner, true)
	router := workspaceRouter(store)

	req := authedRequest(http.MethodGet, "/workspaces/"+ws.ID.String()+"/cart", nil, uuid.New())
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestExportSheetMissingHeaderFields(t *testing.T) {
	userID := uuid.New()
	store, ws := testWorkspace(t, userID, true)
	if _, err := ws.CreateTag(geometry.Fraction{FX: 0.5, FY: 0.5}, []string{"item-a"}); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	router := workspaceRouter(store)

	body := []byte(`{"part_no":"BD010","part_name":"Bracket","customer":"","project":""}`)
	req := authedRequest(http.MethodPost, "/workspaces/"+ws.ID.String()+"/export/sheet", body, userID)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}

	// nothing was consumed or mutated: the cart still has its single line
	if lines := ws.CartLines(); len(lines) != 1 {
		t.Fatalf("expected cart untouched, got %d lines", len(lines))
	}
}

func TestExportSheetSuccess(t *testing.T) {
	userID := uuid.New()
	store, ws := testWorkspace(t, userID, true)
	if _, err := ws.CreateTag(geometry.Fraction{FX: 0.2, FY: 0.2}, []string{"item-a"}); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	router := workspaceRouter(store)

	body := []byte(`{"part_no":"BD010","part_name":"Bracket","customer":"PT Astra","project":"K2FA"}`)
	req := authedRequest(http.MethodPost, "/workspaces/"+ws.ID.String()+"/export/sheet", body, userID)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}
