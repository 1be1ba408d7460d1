// Package embeddedmaps renders placeholder map embeds for event and venue
// records kept in a content repository.
//
// A Renderer resolves the venue behind a subject post, forms a postal
// address from the venue's address fields (or a latitude/longitude pair
// from an optional GeoLocator) and emits an HTML fragment: an
// OpenStreetMap iframe when coordinates are known, a sized address box
// otherwise. Every successful embed is recorded in the renderer's map list
// and can be read back by its index for the rest of the rendering pass.
//
// Renderers hold per-pass state and are not safe for concurrent use.
// Create one per request (see NewFactory) and share the Repository instead.
//
// Extension points
//
// Hooks mirror the filter/action model of the host CMS: output, default
// width, default height and zoom level are filters that receive a value and
// return a possibly modified one; MapEmbedded is a notification fired once
// per embed. Empty hook lists leave values untouched.
package embeddedmaps
