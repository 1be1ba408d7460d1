package embeddedmaps

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Hooks let callers rewrite renderer output and observe embeds without
// modifying the renderer. Filters run in order; each receives the value
// returned by the previous one.

// Hooks defines all available hooks
type Hooks struct {
	// Filters
	Output        []OutputFilterHook
	DefaultWidth  []DimensionFilterHook
	DefaultHeight []DimensionFilterHook
	ZoomLevel     []ZoomFilterHook

	// Notifications
	MapEmbedded []MapEmbeddedHook
}

// HookContext carries information through the hook chain
type HookContext struct {
	Context   context.Context
	PassID    uuid.UUID              // Rendering pass that fired the hook
	Metadata  map[string]interface{} // Custom metadata passed between hooks
	StopChain bool                   // Set to true to stop processing remaining hooks
}

// NewHookContext creates a new hook context
func NewHookContext(ctx context.Context, passID uuid.UUID) *HookContext {
	return &HookContext{
		Context:  ctx,
		PassID:   passID,
		Metadata: make(map[string]interface{}),
	}
}

// OutputFilterHook rewrites the final HTML fragment (possibly empty)
type OutputFilterHook func(hctx *HookContext, html string) (string, error)

// DimensionFilterHook rewrites a default width or height
type DimensionFilterHook func(hctx *HookContext, value string) (string, error)

// ZoomFilterHook rewrites the zoom level. The OpenStreetMap embed derives its
// zoom from the bounding box, so the result is informational only.
type ZoomFilterHook func(hctx *HookContext, zoom int) (int, error)

// MapEmbeddedHook is called after a map has been recorded at index.
// Errors are logged by the renderer and do not fail the render.
type MapEmbeddedHook func(hctx *HookContext, index int, venueID PostID) error

// Merge appends the hooks of others to h and returns h.
func (h *Hooks) Merge(others ...*Hooks) *Hooks {
	for _, o := range others {
		if o == nil {
			continue
		}
		h.Output = append(h.Output, o.Output...)
		h.DefaultWidth = append(h.DefaultWidth, o.DefaultWidth...)
		h.DefaultHeight = append(h.DefaultHeight, o.DefaultHeight...)
		h.ZoomLevel = append(h.ZoomLevel, o.ZoomLevel...)
		h.MapEmbedded = append(h.MapEmbedded, o.MapEmbedded...)
	}
	return h
}

// Hook execution helpers

func (h *Hooks) executeOutput(ctx context.Context, passID uuid.UUID, html string) (string, error) {
	if len(h.Output) == 0 {
		return html, nil
	}

	hctx := NewHookContext(ctx, passID)
	current := html
	for _, hook := range h.Output {
		out, err := hook(hctx, current)
		if err != nil {
			return "", err
		}
		current = out
		if hctx.StopChain {
			break
		}
	}
	return current, nil
}

func executeDimension(ctx context.Context, passID uuid.UUID, hooks []DimensionFilterHook, value string) (string, error) {
	if len(hooks) == 0 {
		return value, nil
	}

	hctx := NewHookContext(ctx, passID)
	current := value
	for _, hook := range hooks {
		out, err := hook(hctx, current)
		if err != nil {
			return "", err
		}
		current = out
		if hctx.StopChain {
			break
		}
	}
	return current, nil
}

func (h *Hooks) executeZoomLevel(ctx context.Context, passID uuid.UUID, zoom int) (int, error) {
	if len(h.ZoomLevel) == 0 {
		return zoom, nil
	}

	hctx := NewHookContext(ctx, passID)
	current := zoom
	for _, hook := range h.ZoomLevel {
		out, err := hook(hctx, current)
		if err != nil {
			return 0, err
		}
		current = out
		if hctx.StopChain {
			break
		}
	}
	return current, nil
}

func (h *Hooks) executeMapEmbedded(ctx context.Context, passID uuid.UUID, index int, venueID PostID) error {
	if len(h.MapEmbedded) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx, passID)
	for _, hook := range h.MapEmbedded {
		if err := hook(hctx, index, venueID); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}

// Common hook implementations

// LoggingHook logs every embedded map
func LoggingHook(logger *slog.Logger) *Hooks {
	return &Hooks{
		MapEmbedded: []MapEmbeddedHook{
			func(hctx *HookContext, index int, venueID PostID) error {
				logger.Info("map embedded", "pass_id", hctx.PassID, "index", index, "venue_id", venueID)
				return nil
			},
		},
	}
}

// DefaultDimensionsHook replaces the built-in default width and height.
// Empty values leave the corresponding default alone.
func DefaultDimensionsHook(width, height string) *Hooks {
	h := &Hooks{}
	if width != "" {
		h.DefaultWidth = append(h.DefaultWidth, func(hctx *HookContext, value string) (string, error) {
			return width, nil
		})
	}
	if height != "" {
		h.DefaultHeight = append(h.DefaultHeight, func(hctx *HookContext, value string) (string, error) {
			return height, nil
		})
	}
	return h
}
