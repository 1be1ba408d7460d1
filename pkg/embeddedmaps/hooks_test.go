package embeddedmaps

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksMerge(t *testing.T) {
	a := &Hooks{Output: []OutputFilterHook{func(_ *HookContext, s string) (string, error) { return s + "a", nil }}}
	b := &Hooks{Output: []OutputFilterHook{func(_ *HookContext, s string) (string, error) { return s + "b", nil }}}

	merged := (&Hooks{}).Merge(a, nil, b)
	require.Len(t, merged.Output, 2)

	out, err := merged.executeOutput(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "ab", out)
}

func TestHooksStopChain(t *testing.T) {
	calls := 0
	hooks := &Hooks{
		ZoomLevel: []ZoomFilterHook{
			func(hctx *HookContext, zoom int) (int, error) {
				calls++
				hctx.StopChain = true
				return zoom + 1, nil
			},
			func(hctx *HookContext, zoom int) (int, error) {
				calls++
				return 0, nil
			},
		},
	}

	zoom, err := hooks.executeZoomLevel(context.Background(), uuid.New(), DefaultZoomLevel)
	require.NoError(t, err)
	assert.Equal(t, DefaultZoomLevel+1, zoom)
	assert.Equal(t, 1, calls)
}

func TestHooksMetadataSharedWithinChain(t *testing.T) {
	hooks := &Hooks{
		Output: []OutputFilterHook{
			func(hctx *HookContext, s string) (string, error) {
				hctx.Metadata["wrapped"] = true
				return "<p>" + s + "</p>", nil
			},
			func(hctx *HookContext, s string) (string, error) {
				if hctx.Metadata["wrapped"] == true {
					return s + "<!-- wrapped -->", nil
				}
				return s, nil
			},
		},
	}

	out, err := hooks.executeOutput(context.Background(), uuid.New(), "x")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p><!-- wrapped -->", out)
}

func TestHooksErrorsStopExecution(t *testing.T) {
	boom := errors.New("boom")
	second := false
	hooks := &Hooks{
		MapEmbedded: []MapEmbeddedHook{
			func(*HookContext, int, PostID) error { return boom },
			func(*HookContext, int, PostID) error { second = true; return nil },
		},
	}

	err := hooks.executeMapEmbedded(context.Background(), uuid.New(), 0, 10)
	assert.ErrorIs(t, err, boom)
	assert.False(t, second)
}

func TestDefaultDimensionsHook(t *testing.T) {
	hooks := DefaultDimensionsHook("640px", "")
	require.Len(t, hooks.DefaultWidth, 1)
	assert.Empty(t, hooks.DefaultHeight)

	width, err := executeDimension(context.Background(), uuid.New(), hooks.DefaultWidth, DefaultWidth)
	require.NoError(t, err)
	assert.Equal(t, "640px", width)

	height, err := executeDimension(context.Background(), uuid.New(), hooks.DefaultHeight, DefaultHeight)
	require.NoError(t, err)
	assert.Equal(t, DefaultHeight, height)
}

func TestLoggingHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	hooks := LoggingHook(logger)
	require.NoError(t, hooks.executeMapEmbedded(context.Background(), uuid.New(), 2, 42))

	assert.Contains(t, buf.String(), "map embedded")
	assert.Contains(t, buf.String(), "venue_id=42")
}
