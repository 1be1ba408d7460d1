package embeddedmaps

import (
	"html"
	"regexp"
	"strings"
)

// Built-in defaults, overridable through the DefaultWidth/DefaultHeight hooks.
const (
	DefaultWidth     = "100%"
	DefaultHeight    = "350px"
	DefaultZoomLevel = 15
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// isNumeric reports whether s is a plain decimal number (surrounding
// whitespace allowed).
func isNumeric(s string) bool {
	return numericPattern.MatchString(strings.TrimSpace(s))
}

func writeMapFrame(b *strings.Builder, src, width, height string) {
	b.WriteString(`<div class="tribe-events-osm-map" style="width:`)
	b.WriteString(html.EscapeString(width))
	b.WriteString(`; height:`)
	b.WriteString(html.EscapeString(height))
	b.WriteString(`;">`)
	b.WriteString(`<iframe width="100%" height="100%" frameborder="0" scrolling="no" marginheight="0" marginwidth="0" src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`" style="border:1px solid #ccc"></iframe>`)
	b.WriteString(`</div>`)
}

func writeAddressBox(b *strings.Builder, address, width, height string) {
	b.WriteString(`<div class="tribe-events-osm-address" style="width:`)
	b.WriteString(html.EscapeString(width))
	b.WriteString(`; height:`)
	b.WriteString(html.EscapeString(height))
	b.WriteString(`; display:flex; align-items:center; justify-content:center; border:1px solid #ccc;">`)
	b.WriteString(html.EscapeString(address))
	b.WriteString(`</div>`)
}
