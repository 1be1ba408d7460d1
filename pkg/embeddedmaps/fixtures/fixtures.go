// Package fixtures loads venue and event records from YAML and writes them
// into any embeddedmaps.PostWriter.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"gopkg.in/yaml.v3"
)

// Set is the contents of a fixture file
type Set struct {
	Venues []Venue `yaml:"venues"`
	Events []Event `yaml:"events"`
}

// Venue is a venue with its address and optional coordinates
type Venue struct {
	ID                   embeddedmaps.PostID `yaml:"id"`
	Title                string              `yaml:"title"`
	Address              string              `yaml:"address"`
	City                 string              `yaml:"city"`
	State                string              `yaml:"state"`
	Province             string              `yaml:"province"`
	Zip                  string              `yaml:"zip"`
	Country              string              `yaml:"country"`
	Lat                  string              `yaml:"lat"`
	Lng                  string              `yaml:"lng"`
	OverwriteCoordinates bool                `yaml:"overwrite_coordinates"`
}

// Event is an event optionally linked to a venue
type Event struct {
	ID      embeddedmaps.PostID `yaml:"id"`
	Title   string              `yaml:"title"`
	VenueID embeddedmaps.PostID `yaml:"venue_id"`
}

// Parse decodes a fixture set
func Parse(r io.Reader) (*Set, error) {
	var set Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &set, nil
}

// LoadFile reads and parses a fixture file
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply writes every post and meta value of the set into w.
// Venues are written before events.
func (s *Set) Apply(ctx context.Context, w embeddedmaps.PostWriter) error {
	for _, v := range s.Venues {
		if err := w.CreatePost(ctx, &embeddedmaps.Post{ID: v.ID, Type: embeddedmaps.PostTypeVenue, Title: v.Title}); err != nil {
			return fmt.Errorf("venue %d: %w", v.ID, err)
		}
		for key, value := range v.meta() {
			if err := w.SetMeta(ctx, v.ID, key, value); err != nil {
				return fmt.Errorf("venue %d meta %s: %w", v.ID, key, err)
			}
		}
	}

	for _, e := range s.Events {
		if err := w.CreatePost(ctx, &embeddedmaps.Post{ID: e.ID, Type: embeddedmaps.PostTypeEvent, Title: e.Title}); err != nil {
			return fmt.Errorf("event %d: %w", e.ID, err)
		}
		if e.VenueID == 0 {
			continue
		}
		if err := w.SetMeta(ctx, e.ID, embeddedmaps.MetaEventVenueID, strconv.FormatInt(int64(e.VenueID), 10)); err != nil {
			return fmt.Errorf("event %d venue: %w", e.ID, err)
		}
	}
	return nil
}

func (v Venue) meta() map[string]string {
	m := map[string]string{
		embeddedmaps.FieldAddress.MetaKey():  v.Address,
		embeddedmaps.FieldCity.MetaKey():     v.City,
		embeddedmaps.FieldState.MetaKey():    v.State,
		embeddedmaps.FieldProvince.MetaKey(): v.Province,
		embeddedmaps.FieldZip.MetaKey():      v.Zip,
		embeddedmaps.FieldCountry.MetaKey():  v.Country,
		embeddedmaps.MetaVenueLat:            v.Lat,
		embeddedmaps.MetaVenueLng:            v.Lng,
	}
	if v.OverwriteCoordinates {
		m[embeddedmaps.MetaVenueGeoOverride] = "1"
	}
	for key, value := range m {
		if value == "" {
			delete(m, key)
		}
	}
	return m
}
