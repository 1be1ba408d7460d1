package embeddedmaps

import "context"

// Repository is the content repository the renderer reads from.
type Repository interface {
	// ResolveCanonicalID normalizes an id; 0 resolves to the current post in ctx.
	ResolveCanonicalID(ctx context.Context, id PostID) (PostID, error)

	// IsEvent reports whether id refers to an event
	IsEvent(ctx context.Context, id PostID) (bool, error)

	// IsVenue reports whether id refers to a venue
	IsVenue(ctx context.Context, id PostID) (bool, error)

	// VenueIDForEvent returns the venue linked to an event, or 0
	VenueIDForEvent(ctx context.Context, eventID PostID) (PostID, error)

	// Title returns the raw (unescaped) display title of a post
	Title(ctx context.Context, id PostID) (string, error)

	// FieldValue returns one address field of a venue, or ""
	FieldValue(ctx context.Context, venueID PostID, field AddressField) (string, error)
}

// GeoLocator exposes stored venue coordinates. It is optional; a renderer
// without one only ever works from the textual address.
type GeoLocator interface {
	Latitude(ctx context.Context, venueID PostID) (string, error)
	Longitude(ctx context.Context, venueID PostID) (string, error)

	// OverwriteCoordinates reports whether the venue skips textual geocoding
	OverwriteCoordinates(ctx context.Context, venueID PostID) (bool, error)
}

// PostWriter stores posts and their meta. Both bundled repositories
// implement it; fixtures are applied through it.
type PostWriter interface {
	CreatePost(ctx context.Context, post *Post) error
	SetMeta(ctx context.Context, id PostID, key, value string) error
}
