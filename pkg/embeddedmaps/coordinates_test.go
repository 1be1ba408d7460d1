package embeddedmaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		lat   string
		lng   string
	}{
		{"plain", "40.712,-74.006", true, "40.712", "-74.006"},
		{"space after comma", "40.712, -74.006", true, "40.712", "-74.006"},
		{"negative both", "-33.8688,-151.2093", true, "-33.8688", "-151.2093"},
		{"integer latitude", "40,-74.006", false, "", ""},
		{"trailing text", "40.712,-74.006 NY", false, "", ""},
		{"street address", "1 Main St Springfield", false, "", ""},
		{"bare comma", ",", false, "", ""},
		{"empty", "", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ParseCoordinates(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.lat, c.Lat)
			assert.Equal(t, tt.lng, c.Lng)
		})
	}
}

func TestBoundingBoxQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"40.712,-74.006", "-74.011%2C40.709%2C-74.001%2C40.715"},
		{"0.0,0.0", "-0.005%2C-0.003%2C0.005%2C0.003"},
		{"51.5237,-0.1585", "-0.1635%2C51.5207%2C-0.1535%2C51.5267"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := ParseCoordinates(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.BoundingBox().Query())
		})
	}
}

func TestEmbedURL(t *testing.T) {
	c, ok := ParseCoordinates("40.712, -74.006")
	require.True(t, ok)

	assert.Equal(t,
		"https://www.openstreetmap.org/export/embed.html?bbox=-74.011%2C40.709%2C-74.001%2C40.715&layer=mapnik&marker=40.712,-74.006",
		EmbedURL("", c))
	assert.Equal(t,
		"https://tiles.local/export/embed.html?bbox=-74.011%2C40.709%2C-74.001%2C40.715&layer=mapnik&marker=40.712,-74.006",
		EmbedURL("tiles.local", c))
}

func TestEmbedURL_CoordinatesLiteral(t *testing.T) {
	c := Coordinates{Lat: "40.712", Lng: "-74.006"}

	assert.Equal(t, "-74.011%2C40.709%2C-74.001%2C40.715", c.BoundingBox().Query())
	assert.Equal(t,
		"https://www.openstreetmap.org/export/embed.html?bbox=-74.011%2C40.709%2C-74.001%2C40.715&layer=mapnik&marker=40.712,-74.006",
		EmbedURL("", c))
}

func TestIsNumeric(t *testing.T) {
	for _, s := range []string{"300", " 300 ", "12.5", ".5", "-4", "1e3"} {
		assert.True(t, isNumeric(s), s)
	}
	for _, s := range []string{"", "300px", "100%", "auto", "1.2.3"} {
		assert.False(t, isNumeric(s), s)
	}
}
