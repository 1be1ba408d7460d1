package embeddedmaps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaFlag(t *testing.T) {
	tests := map[string]bool{
		"":      false,
		"0":     false,
		"1":     true,
		" 1 ":   true,
		"2":     true,
		"-1":    true,
		"yes":   false,
		"1abc":  true,
		"0.9":   false,
		"false": false,
	}
	for raw, want := range tests {
		assert.Equal(t, want, MetaFlag(raw), "MetaFlag(%q)", raw)
	}
}

func TestAddressFieldMetaKeys(t *testing.T) {
	keys := make([]string, 0, len(AddressFields))
	for _, f := range AddressFields {
		keys = append(keys, f.MetaKey())
	}
	assert.Equal(t, []string{
		"_VenueAddress", "_VenueCity", "_VenueState", "_VenueProvince", "_VenueZip", "_VenueCountry",
	}, keys)
}

func TestCurrentPostContext(t *testing.T) {
	_, ok := CurrentPostFromContext(context.Background())
	assert.False(t, ok)

	id, ok := CurrentPostFromContext(ContextWithCurrentPost(context.Background(), 7))
	assert.True(t, ok)
	assert.Equal(t, PostID(7), id)
}

func TestRenderErrorUnwrap(t *testing.T) {
	err := &RenderError{SubjectID: 3, Op: "form_address", Err: ErrPostNotFound}
	assert.True(t, errors.Is(err, ErrPostNotFound))
	assert.Equal(t, "map operation form_address failed for post 3: post not found", err.Error())
}
