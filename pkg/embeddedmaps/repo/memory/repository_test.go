package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/repo/memory"
)

func TestRepository_PostOperations(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	post := &embeddedmaps.Post{ID: 10, Type: embeddedmaps.PostTypeVenue, Title: "Town Hall"}
	require.NoError(t, repo.CreatePost(ctx, post))

	got, err := repo.GetPost(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Town Hall", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	// returned posts are copies
	got.Title = "Changed"
	again, err := repo.GetPost(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Town Hall", again.Title)

	_, err = repo.GetPost(ctx, 99)
	assert.ErrorIs(t, err, embeddedmaps.ErrPostNotFound)

	err = repo.CreatePost(ctx, &embeddedmaps.Post{ID: 0})
	assert.ErrorIs(t, err, embeddedmaps.ErrInvalidPostID)
}

func TestRepository_Meta(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	err := repo.SetMeta(ctx, 10, "_VenueCity", "Springfield")
	assert.ErrorIs(t, err, embeddedmaps.ErrPostNotFound)

	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 10, Type: embeddedmaps.PostTypeVenue}))
	require.NoError(t, repo.SetMeta(ctx, 10, "_VenueCity", "Springfield"))

	value, err := repo.FieldValue(ctx, 10, embeddedmaps.FieldCity)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", value)

	value, err = repo.FieldValue(ctx, 10, embeddedmaps.FieldZip)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRepository_Classification(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 10, Type: embeddedmaps.PostTypeVenue, Title: "Hall"}))
	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 20, Type: embeddedmaps.PostTypeEvent}))
	require.NoError(t, repo.SetMeta(ctx, 20, embeddedmaps.MetaEventVenueID, "10"))
	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 21, Type: embeddedmaps.PostTypeEvent}))
	require.NoError(t, repo.SetMeta(ctx, 21, embeddedmaps.MetaEventVenueID, "not-a-number"))

	tests := []struct {
		id      embeddedmaps.PostID
		isVenue bool
		isEvent bool
		venue   embeddedmaps.PostID
	}{
		{10, true, false, 0},
		{20, false, true, 10},
		{21, false, true, 0},
		{99, false, false, 0},
		{0, false, false, 0},
	}
	for _, tt := range tests {
		isVenue, err := repo.IsVenue(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.isVenue, isVenue, "IsVenue(%d)", tt.id)

		isEvent, err := repo.IsEvent(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.isEvent, isEvent, "IsEvent(%d)", tt.id)

		venue, err := repo.VenueIDForEvent(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.venue, venue, "VenueIDForEvent(%d)", tt.id)
	}

	title, err := repo.Title(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Hall", title)

	title, err = repo.Title(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, title)
}

func TestRepository_ResolveCanonicalID(t *testing.T) {
	repo := memory.New()

	id, err := repo.ResolveCanonicalID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, embeddedmaps.PostID(5), id)

	id, err = repo.ResolveCanonicalID(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, embeddedmaps.PostID(0), id)

	ctx := embeddedmaps.ContextWithCurrentPost(context.Background(), 42)
	id, err = repo.ResolveCanonicalID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, embeddedmaps.PostID(42), id)
}

func TestRepository_GeoLocator(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 10, Type: embeddedmaps.PostTypeVenue}))
	require.NoError(t, repo.SetMeta(ctx, 10, embeddedmaps.MetaVenueLat, "40.7"))
	require.NoError(t, repo.SetMeta(ctx, 10, embeddedmaps.MetaVenueLng, "-74.0"))
	require.NoError(t, repo.SetMeta(ctx, 10, embeddedmaps.MetaVenueGeoOverride, "0"))

	lat, err := repo.Latitude(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "40.7", lat)

	lng, err := repo.Longitude(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "-74.0", lng)

	overwrite, err := repo.OverwriteCoordinates(ctx, 10)
	require.NoError(t, err)
	assert.False(t, overwrite)
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 1, Type: embeddedmaps.PostTypeVenue}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = repo.SetMeta(ctx, 1, "_VenueCity", "City")
			} else {
				_, _ = repo.FieldValue(ctx, 1, embeddedmaps.FieldCity)
			}
		}(i)
	}
	wg.Wait()

	city, err := repo.FieldValue(ctx, 1, embeddedmaps.FieldCity)
	require.NoError(t, err)
	assert.Equal(t, "City", city)
}

func TestRepository_MetaLookupsReportContextErrors(t *testing.T) {
	repo := memory.New()
	require.NoError(t, repo.CreatePost(context.Background(), &embeddedmaps.Post{ID: 20, Type: embeddedmaps.PostTypeEvent}))
	require.NoError(t, repo.SetMeta(context.Background(), 20, embeddedmaps.MetaEventVenueID, "10"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	venueID, err := repo.VenueIDForEvent(ctx, 20)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, embeddedmaps.PostID(0), venueID)

	overwrite, err := repo.OverwriteCoordinates(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, overwrite)
}
