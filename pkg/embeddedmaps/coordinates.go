package embeddedmaps

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTileHost is the map service used for iframe embeds.
const DefaultTileHost = "www.openstreetmap.org"

// Bounding box half-extents around the marker, in degrees.
const (
	bboxLngDelta = 0.005
	bboxLatDelta = 0.003
)

var coordinatePattern = regexp.MustCompile(`^(-?\d+\.\d+),\s*(-?\d+\.\d+)$`)

// Coordinates is a latitude/longitude pair as written in the address.
type Coordinates struct {
	Lat string
	Lng string
}

// ParseCoordinates matches s against "<lat>,<lng>" where both parts are
// decimal numbers with a fractional part. It reports false on no match.
func ParseCoordinates(s string) (Coordinates, bool) {
	m := coordinatePattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: m[1], Lng: m[2]}, true
}

// BoundingBox is the map viewport around a marker.
type BoundingBox struct {
	MinLng, MinLat, MaxLng, MaxLat float64
}

// BoundingBox returns the viewport centered on c. Unparseable parts count
// as zero.
func (c Coordinates) BoundingBox() BoundingBox {
	lat, _ := strconv.ParseFloat(strings.TrimSpace(c.Lat), 64)
	lng, _ := strconv.ParseFloat(strings.TrimSpace(c.Lng), 64)
	return BoundingBox{
		MinLng: lng - bboxLngDelta,
		MinLat: lat - bboxLatDelta,
		MaxLng: lng + bboxLngDelta,
		MaxLat: lat + bboxLatDelta,
	}
}

// Query returns the bbox query value with URL-encoded comma separators.
func (b BoundingBox) Query() string {
	parts := []string{
		formatDegrees(b.MinLng),
		formatDegrees(b.MinLat),
		formatDegrees(b.MaxLng),
		formatDegrees(b.MaxLat),
	}
	return strings.Join(parts, "%2C")
}

// EmbedURL builds the iframe source for a marker at c on host.
func EmbedURL(host string, c Coordinates) string {
	if host == "" {
		host = DefaultTileHost
	}
	u := url.URL{Scheme: "https", Host: host, Path: "/export/embed.html"}
	return u.String() + "?bbox=" + c.BoundingBox().Query() +
		"&layer=mapnik&marker=" + c.Lat + "," + c.Lng
}

// formatDegrees prints v with at most 14 significant digits so that
// float noise such as -74.01100000000001 prints as -74.011.
func formatDegrees(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 14, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
