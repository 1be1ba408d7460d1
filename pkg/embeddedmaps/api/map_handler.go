package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
)

const (
	maxSubjectsPerBatch = 50
	maxBatchBodyBytes   = 64 << 10
)

// MapHandler handles HTTP requests for map embeds. Each request gets its
// own renderer, so the map list covers exactly one request.
type MapHandler struct {
	newRenderer embeddedmaps.Factory
}

// NewMapHandler creates a new map handler
func NewMapHandler(factory embeddedmaps.Factory) *MapHandler {
	return &MapHandler{newRenderer: factory}
}

// Routes returns the routes for maps
func (h *MapHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(CurrentPostMiddleware)

	r.Get("/maps/{id}", h.RenderMap)
	r.With(RequestSizeLimitMiddleware(maxBatchBodyBytes)).Post("/maps/batch", h.RenderBatch)
	r.Get("/posts/{id}/address", h.GetAddress)

	return r
}

// BatchItem is one subject of a batch request
type BatchItem struct {
	PostID    int64  `json:"post_id"`
	Width     string `json:"width"`
	Height    string `json:"height"`
	ForceLoad bool   `json:"force_load"`
}

// BatchRequest renders several maps in one pass
type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

// BatchResponse carries one fragment per item and the pass's map list
type BatchResponse struct {
	PassID    string                        `json:"pass_id"`
	Fragments []string                      `json:"fragments"`
	Maps      []embeddedmaps.IndexedMapData `json:"maps"`
}

// AddressResponse is the response body for an address lookup
type AddressResponse struct {
	PostID  int64  `json:"post_id"`
	Address string `json:"address"`
}

// RenderMap renders the map fragment for a single post as text/html
func (h *MapHandler) RenderMap(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	force := false
	if raw := q.Get("force"); raw != "" {
		force, err = strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid force flag", http.StatusBadRequest)
			return
		}
	}

	renderer, err := h.newRenderer()
	if err != nil {
		slog.Error("Failed to create renderer", "err", err)
		http.Error(w, "Failed to create renderer", http.StatusInternalServerError)
		return
	}

	fragment, err := renderer.Render(r.Context(), id, q.Get("width"), q.Get("height"), force)
	if err != nil {
		writeRenderError(w, id, err)
		return
	}

	render.HTML(w, r, fragment)
}

// RenderBatch renders several posts with one renderer
func (h *MapHandler) RenderBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "No items provided", http.StatusBadRequest)
		return
	}
	if len(req.Items) > maxSubjectsPerBatch {
		http.Error(w, "Too many items", http.StatusBadRequest)
		return
	}

	renderer, err := h.newRenderer()
	if err != nil {
		slog.Error("Failed to create renderer", "err", err)
		http.Error(w, "Failed to create renderer", http.StatusInternalServerError)
		return
	}

	resp := BatchResponse{
		PassID:    renderer.PassID().String(),
		Fragments: make([]string, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		if item.PostID < 0 {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}
		id := embeddedmaps.PostID(item.PostID)
		fragment, err := renderer.Render(r.Context(), id, item.Width, item.Height, item.ForceLoad)
		if err != nil {
			writeRenderError(w, id, err)
			return
		}
		resp.Fragments = append(resp.Fragments, fragment)
	}
	resp.Maps = renderer.Maps()

	render.JSON(w, r, resp)
}

// GetAddress returns the address a map for the post would use
func (h *MapHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	renderer, err := h.newRenderer()
	if err != nil {
		slog.Error("Failed to create renderer", "err", err)
		http.Error(w, "Failed to create renderer", http.StatusInternalServerError)
		return
	}

	address, err := renderer.Address(r.Context(), id)
	if err != nil {
		writeRenderError(w, id, err)
		return
	}

	render.JSON(w, r, AddressResponse{PostID: int64(id), Address: address})
}

func parsePostID(raw string) (embeddedmaps.PostID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, embeddedmaps.ErrInvalidPostID
	}
	return embeddedmaps.PostID(id), nil
}

func writeRenderError(w http.ResponseWriter, id embeddedmaps.PostID, err error) {
	slog.Error("Failed to render map", "post_id", id, "err", err)
	if errors.Is(err, embeddedmaps.ErrPostNotFound) {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to render map", http.StatusInternalServerError)
}
