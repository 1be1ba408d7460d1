package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-maps/pkg/embeddedmaps"
)

// Repository implements embeddedmaps.Repository and embeddedmaps.GeoLocator
// using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	posts map[embeddedmaps.PostID]*embeddedmaps.Post
	meta  map[embeddedmaps.PostID]map[string]string // post_id -> key -> value
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts: make(map[embeddedmaps.PostID]*embeddedmaps.Post),
		meta:  make(map[embeddedmaps.PostID]map[string]string),
	}
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *embeddedmaps.Post) error {
	if post.ID <= 0 {
		return embeddedmaps.ErrInvalidPostID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to avoid external modifications
	postCopy := *post
	now := time.Now().UTC()
	if postCopy.CreatedAt.IsZero() {
		postCopy.CreatedAt = now
	}
	postCopy.UpdatedAt = now
	r.posts[post.ID] = &postCopy

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id embeddedmaps.PostID) (*embeddedmaps.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, embeddedmaps.ErrPostNotFound
	}
	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) SetMeta(ctx context.Context, id embeddedmaps.PostID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return embeddedmaps.ErrPostNotFound
	}
	if r.meta[id] == nil {
		r.meta[id] = make(map[string]string)
	}
	r.meta[id][key] = value
	return nil
}

// GetMeta returns the meta value for key, or "" when unset. It fails only
// when ctx is done, like the postgres store.
func (r *Repository) GetMeta(ctx context.Context, id embeddedmaps.PostID, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.meta[id][key], nil
}

// embeddedmaps.Repository

func (r *Repository) ResolveCanonicalID(ctx context.Context, id embeddedmaps.PostID) (embeddedmaps.PostID, error) {
	if id != 0 {
		return id, nil
	}
	current, _ := embeddedmaps.CurrentPostFromContext(ctx)
	return current, nil
}

func (r *Repository) IsEvent(ctx context.Context, id embeddedmaps.PostID) (bool, error) {
	return r.isType(id, embeddedmaps.PostTypeEvent), nil
}

func (r *Repository) IsVenue(ctx context.Context, id embeddedmaps.PostID) (bool, error) {
	return r.isType(id, embeddedmaps.PostTypeVenue), nil
}

func (r *Repository) VenueIDForEvent(ctx context.Context, eventID embeddedmaps.PostID) (embeddedmaps.PostID, error) {
	raw, err := r.GetMeta(ctx, eventID, embeddedmaps.MetaEventVenueID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0, nil
	}
	return embeddedmaps.PostID(id), nil
}

func (r *Repository) Title(ctx context.Context, id embeddedmaps.PostID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if post, exists := r.posts[id]; exists {
		return post.Title, nil
	}
	return "", nil
}

func (r *Repository) FieldValue(ctx context.Context, venueID embeddedmaps.PostID, field embeddedmaps.AddressField) (string, error) {
	return r.GetMeta(ctx, venueID, field.MetaKey())
}

// embeddedmaps.GeoLocator

func (r *Repository) Latitude(ctx context.Context, venueID embeddedmaps.PostID) (string, error) {
	return r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueLat)
}

func (r *Repository) Longitude(ctx context.Context, venueID embeddedmaps.PostID) (string, error) {
	return r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueLng)
}

func (r *Repository) OverwriteCoordinates(ctx context.Context, venueID embeddedmaps.PostID) (bool, error) {
	raw, err := r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueGeoOverride)
	if err != nil {
		return false, err
	}
	return embeddedmaps.MetaFlag(raw), nil
}

func (r *Repository) isType(id embeddedmaps.PostID, postType embeddedmaps.PostType) bool {
	if id == 0 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	return exists && post.Type == postType
}
