package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/repo/postgres"
)

// setupTestDB connects to TEST_DATABASE_URL and migrates a throwaway schema
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := "maps_test_" + uuid.New().String()[:8]
	admin, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", pgx.Identifier{schema}.Sanitize()))
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", pgx.Identifier{schema}.Sanitize()))
		admin.Close()
	})

	require.NoError(t, postgres.NewWithPool(pool).Migrate(ctx))
	return pool
}

func TestPostgresRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewWithPool(pool)
	ctx := context.Background()

	t.Run("posts and meta", func(t *testing.T) {
		require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 10, Type: embeddedmaps.PostTypeVenue, Title: "Town Hall"}))
		require.NoError(t, repo.SetMeta(ctx, 10, "_VenueCity", "Springfield"))

		post, err := repo.GetPost(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Town Hall", post.Title)
		assert.Equal(t, embeddedmaps.PostTypeVenue, post.Type)

		city, err := repo.FieldValue(ctx, 10, embeddedmaps.FieldCity)
		require.NoError(t, err)
		assert.Equal(t, "Springfield", city)

		zip, err := repo.FieldValue(ctx, 10, embeddedmaps.FieldZip)
		require.NoError(t, err)
		assert.Empty(t, zip)

		// upsert
		require.NoError(t, repo.SetMeta(ctx, 10, "_VenueCity", "Shelbyville"))
		city, err = repo.FieldValue(ctx, 10, embeddedmaps.FieldCity)
		require.NoError(t, err)
		assert.Equal(t, "Shelbyville", city)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := repo.GetPost(ctx, 999)
		assert.ErrorIs(t, err, embeddedmaps.ErrPostNotFound)

		err = repo.SetMeta(ctx, 999, "_VenueCity", "Nowhere")
		assert.ErrorIs(t, err, embeddedmaps.ErrPostNotFound)

		title, err := repo.Title(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, title)
	})

	t.Run("classification", func(t *testing.T) {
		require.NoError(t, repo.CreatePost(ctx, &embeddedmaps.Post{ID: 20, Type: embeddedmaps.PostTypeEvent, Title: "Concert"}))
		require.NoError(t, repo.SetMeta(ctx, 20, embeddedmaps.MetaEventVenueID, "10"))

		isEvent, err := repo.IsEvent(ctx, 20)
		require.NoError(t, err)
		assert.True(t, isEvent)

		isVenue, err := repo.IsVenue(ctx, 20)
		require.NoError(t, err)
		assert.False(t, isVenue)

		venueID, err := repo.VenueIDForEvent(ctx, 20)
		require.NoError(t, err)
		assert.Equal(t, embeddedmaps.PostID(10), venueID)
	})

	t.Run("render", func(t *testing.T) {
		require.NoError(t, repo.SetMeta(ctx, 10, embeddedmaps.MetaVenueLat, "40.712"))
		require.NoError(t, repo.SetMeta(ctx, 10, embeddedmaps.MetaVenueLng, "-74.006"))

		r, err := embeddedmaps.New(embeddedmaps.WithRepository(repo), embeddedmaps.WithGeoLocator(repo))
		require.NoError(t, err)

		out, err := r.Render(ctx, 20, "", "", false)
		require.NoError(t, err)
		assert.Contains(t, out, "marker=40.712,-74.006")

		data, ok := r.MapData(0)
		require.True(t, ok)
		assert.Equal(t, "Shelbyville ", data.Address)
	})
}
