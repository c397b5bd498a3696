package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wirasakti/partmap/api/responses"
	"github.com/wirasakti/partmap/api/validators"
	"github.com/wirasakti/partmap/internal/cart"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/compositor"
	"github.com/wirasakti/partmap/internal/geometry"
	"github.com/wirasakti/partmap/internal/selection"
	"github.com/wirasakti/partmap/internal/sheet"
	"github.com/wirasakti/partmap/internal/workspace"
	"github.com/wirasakti/partmap/pkg/config"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"github.com/wirasakti/partmap/pkg/logger"
)

type tagResponse struct {
	ID       string            `json:"id"`
	Number   int               `json:"number"`
	Position geometry.Fraction `json:"position"`
	Items    []catalog.Item    `json:"items"`
}

type imageResponse struct {
	Natural geometry.Size `json:"natural"`
	Display geometry.Size `json:"display"`
	Format  string        `json:"format"`
}

type selectionResponse struct {
	State        selection.State `json:"state"`
	EditingTagID string          `json:"editing_tag_id,omitempty"`
	PendingItems []string        `json:"pending_items"`
}

type workspaceStateResponse struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Image     *imageResponse    `json:"image,omitempty"`
	Tags      []tagResponse     `json:"tags"`
	Cart      cart.View         `json:"cart"`
	Selection selectionResponse `json:"selection"`
}

func newTagResponses(tags []workspace.Tag) []tagResponse {
	out := make([]tagResponse, len(tags))
	for i, tag := range tags {
		out[i] = tagResponse{
			ID:       tag.ID,
			Number:   i + 1,
			Position: tag.Position,
			Items:    tag.Items,
		}
	}
	return out
}

func newWorkspaceState(ws *workspace.Workspace) workspaceStateResponse {
	state, editingTag, pending := ws.SelectionState()

	resp := workspaceStateResponse{
		ID:        ws.ID.String(),
		CreatedAt: ws.CreatedAt,
		Tags:      newTagResponses(ws.Tags()),
		Cart:      ws.CartView(0),
		Selection: selectionResponse{
			State:        state,
			EditingTagID: editingTag,
			PendingItems: pending,
		},
	}
	if img := ws.Image(); img != nil {
		resp.Image = &imageResponse{
			Natural: img.Natural,
			Display: img.Display,
			Format:  img.Format,
		}
	}
	return resp
}

func loadWorkspace(r *http.Request, store *workspace.Store) (*workspace.Workspace, error) {
	userID, err := actorID(r)
	if err != nil {
		return nil, err
	}
	wsID, err := uuidParam(r, "workspaceId")
	if err != nil {
		return nil, err
	}
	return store.Get(wsID, userID)
}

func displaySize(ws *workspace.Workspace) (geometry.Size, error) {
	img := ws.Image()
	if img == nil {
		return geometry.Size{}, pkgerrors.New(pkgerrors.CodeValidation, "upload an image first")
	}
	return img.Display, nil
}

func normalizeClick(ws *workspace.Workspace, click geometry.Point) (geometry.Fraction, error) {
	display, err := displaySize(ws)
	if err != nil {
		return geometry.Fraction{}, err
	}
	fraction, err := geometry.Normalize(click, display)
	if err != nil {
		return geometry.Fraction{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "position unavailable")
	}
	return fraction, nil
}

// WorkspaceCreate opens a fresh tagging session seeded with the current
// catalog. A failed catalog load degrades to an empty catalog so the session
// still opens.
func WorkspaceCreate(store *workspace.Store, catalogSvc catalog.Service, cfg config.WorkspaceConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace store unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := catalogSvc.Items(r.Context())
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "workspace.catalog_unavailable", err)
			}
			items = nil
		}

		ws := workspace.New(userID, items, cfg.CartPageSize)
		store.Put(ws)

		if logg != nil {
			ctx := logg.WithWorkspaceID(r.Context(), ws.ID.String())
			logg.Info(ctx, "workspace.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newWorkspaceState(ws))
	}
}

// WorkspaceList returns the caller's open sessions.
func WorkspaceList(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := store.ListByUser(userID)
		out := make([]workspaceStateResponse, len(list))
		for i, ws := range list {
			out[i] = newWorkspaceState(ws)
		}
		responses.WriteSuccess(w, map[string]any{"workspaces": out})
	}
}

// WorkspaceFetch returns the full state of one session.
func WorkspaceFetch(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWorkspaceState(ws))
	}
}

// WorkspaceDelete discards a session.
func WorkspaceDelete(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wsID, err := uuidParam(r, "workspaceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Delete(wsID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// WorkspaceUploadImage accepts a multipart raster upload and resets the
// session's tags and cart around it.
func WorkspaceUploadImage(store *workspace.Store, cfg config.WorkspaceConfig, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(cfg.MaxUploadMB) << 20

	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("upload exceeds %dMB limit", cfg.MaxUploadMB)))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}

		img, err := workspace.DecodeUpload(data, geometry.Size{
			Width:  float64(cfg.MaxDisplayWidth),
			Height: float64(cfg.MaxDisplayHeight),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ws.SetImage(img)
		responses.WriteSuccess(w, newWorkspaceState(ws))
	}
}

type tagCreateRequest struct {
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
}

// TagCreate places a pin at a display-space click.
func TagCreate(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body tagCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fraction, err := normalizeClick(ws, geometry.Point{X: body.X, Y: body.Y})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := ws.CreateTag(fraction, body.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"tag":  tag,
			"cart": ws.CartView(0),
		})
	}
}

type tagMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TagMove updates a pin position from a drag release point, clamped to the
// display bounds.
func TagMove(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body tagMoveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		display, err := displaySize(ws)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fraction, err := geometry.ClampDrag(geometry.Point{X: body.X, Y: body.Y}, display)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "position unavailable"))
			return
		}

		if err := ws.MoveTag(chi.URLParam(r, "tagId"), fraction); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"position": fraction})
	}
}

type tagItemsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
}

// TagUpdateItems replaces a pin's item set.
func TagUpdateItems(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body tagItemsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := ws.UpdateTagItems(chi.URLParam(r, "tagId"), body.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"tag":  tag,
			"cart": ws.CartView(0),
		})
	}
}

// TagDelete removes a pin, renumbering the rest.
func TagDelete(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ws.DeleteTag(chi.URLParam(r, "tagId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"tags": newTagResponses(ws.Tags()),
			"cart": ws.CartView(0),
		})
	}
}

// CartFetch returns the requested cart page.
func CartFetch(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 0, 0, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ws.CartView(page))
	}
}

// WorkspaceSearch filters the catalog snapshot with the dropdown semantics.
func WorkspaceSearch(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items": ws.SearchCatalog(r.URL.Query().Get("q")),
		})
	}
}

type selectionOpenRequest struct {
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Viewport geometry.Size `json:"viewport"`
}

// SelectionOpenCreate opens the dropdown for a new pin and returns where the
// client should anchor it.
func SelectionOpenCreate(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body selectionOpenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		click := geometry.Point{X: body.X, Y: body.Y}
		fraction, err := normalizeClick(ws, click)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ws.OpenCreate(fraction); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := map[string]any{"selection": currentSelection(ws)}
		if body.Viewport.Width > 0 && body.Viewport.Height > 0 {
			resp["dropdown"] = geometry.PlaceDropdown(click, body.Viewport)
		}
		responses.WriteSuccess(w, resp)
	}
}

// SelectionOpenEdit opens the dropdown pre-seeded with a tag's items.
func SelectionOpenEdit(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ws.OpenEdit(chi.URLParam(r, "tagId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"selection": currentSelection(ws)})
	}
}

type selectionToggleRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// SelectionToggle flips one catalog item in the pending set.
func SelectionToggle(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body selectionToggleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selected, err := ws.ToggleSelection(body.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"selected":  selected,
			"selection": currentSelection(ws),
		})
	}
}

type selectionQueryRequest struct {
	Query string `json:"query"`
}

// SelectionQuery updates the dropdown filter and returns the matches.
func SelectionQuery(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body selectionQueryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ws.SetSelectionQuery(body.Query)
		responses.WriteSuccess(w, map[string]any{
			"items": ws.SearchCatalog(body.Query),
		})
	}
}

// SelectionCommit confirms the pending set, creating or updating a tag.
func SelectionCommit(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tag, err := ws.CommitSelection()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"tag":  tag,
			"tags": newTagResponses(ws.Tags()),
			"cart": ws.CartView(0),
		})
	}
}

// SelectionCancel closes the dropdown discarding the pending set.
func SelectionCancel(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ws.CancelSelection()
		responses.WriteSuccess(w, map[string]any{"selection": currentSelection(ws)})
	}
}

func currentSelection(ws *workspace.Workspace) selectionResponse {
	state, editingTag, pending := ws.SelectionState()
	return selectionResponse{
		State:        state,
		EditingTagID: editingTag,
		PendingItems: pending,
	}
}

// ExportImage renders the tagged image at natural resolution.
func ExportImage(store *workspace.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := ws.Snapshot()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		marks := make([]compositor.Mark, len(snap.Tags))
		for i, tag := range snap.Tags {
			marks[i] = compositor.Mark{
				Number:   i + 1,
				Position: tag.Position,
				Items:    tag.Items,
			}
		}

		data, err := compositor.Render(snap.Bitmap, marks)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("part-layout-%s.png", time.Now().Format("2006-01-02"))
		responses.WriteBinary(w, "image/png", filename, data)
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportSheet writes the cart into the supplier/maker layout workbook.
func ExportSheet(store *workspace.Store, cfg config.ExportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := loadWorkspace(r, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var header sheet.Header
		if err := validators.DecodeJSONBody(r, &header); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := sheet.Build(ws.CartLines(), header, sheet.Options{
			CompanyName: cfg.CompanyName,
			SheetName:   cfg.SheetName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("supplier-maker-layout-%s.xlsx", time.Now().Format("2006-01-02"))
		responses.WriteBinary(w, xlsxContentType, filename, data)
	}
}
