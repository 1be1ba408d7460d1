package embeddedmaps

import (
	"context"
	"html"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Renderer builds map embeds for one rendering pass
type Renderer struct {
	repository Repository
	geo        GeoLocator
	hooks      *Hooks
	logger     *slog.Logger
	passID     uuid.UUID
	tileHost   string

	// per-call working state
	eventID PostID
	venueID PostID
	address string

	embeddedMaps map[int]MapData
	nextIndex    int
}

// Option represents a functional option for configuring the renderer
type Option func(*Renderer)

// WithRepository sets the content repository
func WithRepository(repo Repository) Option {
	return func(r *Renderer) {
		r.repository = repo
	}
}

// WithGeoLocator enables stored venue coordinates
func WithGeoLocator(geo GeoLocator) Option {
	return func(r *Renderer) {
		r.geo = geo
	}
}

// WithHooks adds hooks to the renderer. May be given more than once.
func WithHooks(hooks *Hooks) Option {
	return func(r *Renderer) {
		r.hooks.Merge(hooks)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPassID sets the rendering pass id reported to hooks and logs
func WithPassID(id uuid.UUID) Option {
	return func(r *Renderer) {
		r.passID = id
	}
}

// WithTileHost overrides the map service host
func WithTileHost(host string) Option {
	return func(r *Renderer) {
		if host != "" {
			r.tileHost = host
		}
	}
}

// New creates a renderer with the given options
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		hooks:        &Hooks{},
		logger:       slog.Default(),
		passID:       uuid.New(),
		tileHost:     DefaultTileHost,
		embeddedMaps: make(map[int]MapData),
	}

	for _, option := range options {
		option(r)
	}

	if r.repository == nil {
		return nil, ErrRepositoryRequired
	}

	return r, nil
}

// Factory creates a fresh renderer, typically one per request
type Factory func() (*Renderer, error)

// NewFactory returns a Factory applying options to every renderer.
// Each renderer gets its own pass id.
func NewFactory(options ...Option) Factory {
	return func() (*Renderer, error) {
		return New(options...)
	}
}

// PassID returns the rendering pass id
func (r *Renderer) PassID() uuid.UUID {
	return r.passID
}

// Render returns the map placeholder HTML for an event or venue.
// width and height may be bare numbers (pixels), CSS lengths, or empty for
// the defaults. With forceLoad the map is recorded even when no address
// could be formed.
func (r *Renderer) Render(ctx context.Context, subjectID PostID, width, height string, forceLoad bool) (string, error) {
	if err := r.resolveIDs(ctx, subjectID); err != nil {
		return "", r.fail(subjectID, "resolve_ids", err)
	}

	ok, err := r.hasSubject(ctx)
	if err != nil {
		return "", r.fail(subjectID, "classify", err)
	}
	if !ok {
		r.logger.Debug("no event or venue for map", "pass_id", r.passID, "subject_id", subjectID)
		return r.filterOutput(ctx, subjectID, "")
	}

	if err := r.formAddress(ctx); err != nil {
		return "", r.fail(subjectID, "form_address", err)
	}

	if r.address == "" && !forceLoad {
		r.logger.Debug("no address for map", "pass_id", r.passID, "subject_id", subjectID, "venue_id", r.venueID)
		return r.filterOutput(ctx, subjectID, "")
	}

	var title string
	if r.venueID != 0 {
		title, err = r.repository.Title(ctx, r.venueID)
		if err != nil {
			return "", r.fail(subjectID, "title", err)
		}
	}
	index := r.appendMap(MapData{Address: r.address, Title: html.EscapeString(title)})

	width, err = r.normalizeDimension(ctx, width, r.hooks.DefaultWidth, DefaultWidth)
	if err != nil {
		return "", r.fail(subjectID, "default_width", err)
	}
	height, err = r.normalizeDimension(ctx, height, r.hooks.DefaultHeight, DefaultHeight)
	if err != nil {
		return "", r.fail(subjectID, "default_height", err)
	}

	address := strings.TrimSpace(r.address)
	lookup := address
	if r.geo != nil {
		lat, lng, err := r.storedCoordinates(ctx)
		if err != nil {
			return "", r.fail(subjectID, "geolocation", err)
		}
		if lat != "" && lng != "" {
			lookup = lat + "," + lng
		}
	}

	var b strings.Builder
	if coords, ok := ParseCoordinates(lookup); ok {
		zoom, err := r.hooks.executeZoomLevel(ctx, r.passID, DefaultZoomLevel)
		if err != nil {
			return "", r.fail(subjectID, "zoom_level", err)
		}
		r.logger.Debug("embedding map frame", "pass_id", r.passID, "index", index, "lat", coords.Lat, "lng", coords.Lng, "zoom", zoom)
		writeMapFrame(&b, EmbedURL(r.tileHost, coords), width, height)
	} else if address != "" {
		writeAddressBox(&b, address, width, height)
	}

	if err := r.hooks.executeMapEmbedded(ctx, r.passID, index, r.venueID); err != nil {
		r.logger.Warn("map embedded hook failed", "pass_id", r.passID, "subject_id", subjectID, "index", index, "error", err)
	}

	return r.filterOutput(ctx, subjectID, b.String())
}

// Address resolves subjectID and returns the address a map would use,
// without recording a map.
func (r *Renderer) Address(ctx context.Context, subjectID PostID) (string, error) {
	if err := r.resolveIDs(ctx, subjectID); err != nil {
		return "", r.fail(subjectID, "resolve_ids", err)
	}
	ok, err := r.hasSubject(ctx)
	if err != nil {
		return "", r.fail(subjectID, "classify", err)
	}
	if !ok {
		r.address = ""
		return "", nil
	}
	if err := r.formAddress(ctx); err != nil {
		return "", r.fail(subjectID, "form_address", err)
	}
	return r.address, nil
}

// MapData returns the map recorded at index
func (r *Renderer) MapData(index int) (MapData, bool) {
	data, ok := r.embeddedMaps[index]
	return data, ok
}

// UpdateMapData stores data at index, creating the entry if needed
func (r *Renderer) UpdateMapData(index int, data MapData) {
	r.embeddedMaps[index] = data
	if index >= r.nextIndex {
		r.nextIndex = index + 1
	}
}

// Maps returns all recorded maps ordered by index
func (r *Renderer) Maps() []IndexedMapData {
	out := make([]IndexedMapData, 0, len(r.embeddedMaps))
	for index, data := range r.embeddedMaps {
		out = append(out, IndexedMapData{Index: index, MapData: data})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// Len returns the number of recorded maps
func (r *Renderer) Len() int {
	return len(r.embeddedMaps)
}

// IndexedMapData pairs a recorded map with its index
type IndexedMapData struct {
	Index int `json:"index"`
	MapData
}

func (r *Renderer) appendMap(data MapData) int {
	index := r.nextIndex
	r.embeddedMaps[index] = data
	r.nextIndex++
	return index
}

func (r *Renderer) resolveIDs(ctx context.Context, subjectID PostID) error {
	r.eventID, r.venueID = 0, 0

	id, err := r.repository.ResolveCanonicalID(ctx, subjectID)
	if err != nil {
		return err
	}
	if id == 0 {
		return nil
	}

	isVenue, err := r.repository.IsVenue(ctx, id)
	if err != nil {
		return err
	}
	if isVenue {
		r.venueID = id
		return nil
	}

	isEvent, err := r.repository.IsEvent(ctx, id)
	if err != nil {
		return err
	}
	if isEvent {
		r.eventID = id
		r.venueID, err = r.repository.VenueIDForEvent(ctx, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// hasSubject reports whether the resolved ids name a venue or an event
func (r *Renderer) hasSubject(ctx context.Context) (bool, error) {
	if r.venueID != 0 {
		ok, err := r.repository.IsVenue(ctx, r.venueID)
		if err != nil || ok {
			return ok, err
		}
	}
	if r.eventID != 0 {
		return r.repository.IsEvent(ctx, r.eventID)
	}
	return false, nil
}

// formAddress joins the venue's address fields, each followed by a space
func (r *Renderer) formAddress(ctx context.Context) error {
	r.address = ""

	var b strings.Builder
	for _, field := range AddressFields {
		value, err := r.repository.FieldValue(ctx, r.venueID, field)
		if err != nil {
			return err
		}
		if value != "" {
			b.WriteString(value)
			b.WriteByte(' ')
		}
	}
	r.address = b.String()

	if strings.TrimSpace(r.address) != "" || r.geo == nil {
		return nil
	}

	overwrite, err := r.geo.OverwriteCoordinates(ctx, r.venueID)
	if err != nil {
		return err
	}
	if overwrite {
		lat, lng, err := r.storedCoordinates(ctx)
		if err != nil {
			return err
		}
		r.address = lat + "," + lng
	}
	return nil
}

func (r *Renderer) storedCoordinates(ctx context.Context) (string, string, error) {
	lat, err := r.geo.Latitude(ctx, r.venueID)
	if err != nil {
		return "", "", err
	}
	lng, err := r.geo.Longitude(ctx, r.venueID)
	if err != nil {
		return "", "", err
	}
	return lat, lng, nil
}

func (r *Renderer) normalizeDimension(ctx context.Context, value string, hooks []DimensionFilterHook, fallback string) (string, error) {
	if isNumeric(value) {
		return strings.TrimSpace(value) + "px", nil
	}
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	return executeDimension(ctx, r.passID, hooks, fallback)
}

func (r *Renderer) filterOutput(ctx context.Context, subjectID PostID, fragment string) (string, error) {
	out, err := r.hooks.executeOutput(ctx, r.passID, fragment)
	if err != nil {
		return "", r.fail(subjectID, "filter_output", err)
	}
	return out, nil
}

func (r *Renderer) fail(subjectID PostID, op string, err error) error {
	r.logger.Error("map rendering failed", "pass_id", r.passID, "subject_id", subjectID, "op", op, "error", err)
	return &RenderError{SubjectID: subjectID, Op: op, Err: err}
}
