package embeddedmaps

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// PostID identifies a record in the content repository.
// Zero stands for "the current post in context".
type PostID int64

// PostType is the content type of a post.
type PostType string

// Post type constants (typed).
const (
	PostTypeEvent PostType = "tribe_events"
	PostTypeVenue PostType = "tribe_venue"
)

// AddressField names one part of a venue's postal address.
type AddressField string

// Address field constants, in the order they are joined.
const (
	FieldAddress  AddressField = "address"
	FieldCity     AddressField = "city"
	FieldState    AddressField = "state"
	FieldProvince AddressField = "province"
	FieldZip      AddressField = "zip"
	FieldCountry  AddressField = "country"
)

// AddressFields lists the address parts in join order.
var AddressFields = []AddressField{
	FieldAddress,
	FieldCity,
	FieldState,
	FieldProvince,
	FieldZip,
	FieldCountry,
}

// Meta keys used by the bundled repositories.
const (
	MetaEventVenueID     = "_EventVenueID"
	MetaVenueLat         = "_VenueLat"
	MetaVenueLng         = "_VenueLng"
	MetaVenueGeoOverride = "_VenueGeoAddressOverwrite"
)

// MetaKey returns the venue meta key holding the field's value.
func (f AddressField) MetaKey() string {
	switch f {
	case FieldAddress:
		return "_VenueAddress"
	case FieldCity:
		return "_VenueCity"
	case FieldState:
		return "_VenueState"
	case FieldProvince:
		return "_VenueProvince"
	case FieldZip:
		return "_VenueZip"
	case FieldCountry:
		return "_VenueCountry"
	}
	return "_Venue" + string(f)
}

// Post is a content record as stored by the bundled repositories.
type Post struct {
	ID        PostID    `json:"id" yaml:"id"`
	Type      PostType  `json:"type" yaml:"type"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// MapData is the record kept for each embedded map.
type MapData struct {
	Address string `json:"address"`
	Title   string `json:"title"`
}

type currentPostKey struct{}

// ContextWithCurrentPost returns a context carrying the post being rendered.
// Repositories use it to resolve subject id 0.
func ContextWithCurrentPost(ctx context.Context, id PostID) context.Context {
	return context.WithValue(ctx, currentPostKey{}, id)
}

// CurrentPostFromContext returns the post stored by ContextWithCurrentPost.
func CurrentPostFromContext(ctx context.Context) (PostID, bool) {
	id, ok := ctx.Value(currentPostKey{}).(PostID)
	return id, ok
}

// MetaFlag interprets a stored meta value as an integer flag: the leading
// integer of the value is parsed and any non-zero result is true.
func MetaFlag(raw string) bool {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	return err == nil && n != 0
}
