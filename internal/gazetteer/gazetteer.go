// Package gazetteer holds the fixed table of locations comments can be
// generated for. The table is embedded at build time; there is no runtime
// mutation, so lookups need no synchronization.
package gazetteer

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

//go:embed locations.csv
var locationsFS embed.FS

// Location is one entry in the gazetteer.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Gazetteer is an immutable lookup table of locations.
type Gazetteer struct {
	byName  map[string]Location
	ordered []Location
}

// Load parses the embedded location table.
func Load() (*Gazetteer, error) {
	f, err := locationsFS.Open("locations.csv")
	if err != nil {
		return nil, fmt.Errorf("open locations: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Gazetteer, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != 4 {
		return nil, fmt.Errorf("unexpected header length %d", len(header))
	}

	g := &Gazetteer{byName: make(map[string]Location)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		lat, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse latitude for %s: %w", rec[0], err)
		}
		lon, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse longitude for %s: %w", rec[0], err)
		}
		loc := Location{Name: rec[0], Region: rec[1], Latitude: lat, Longitude: lon}
		if _, dup := g.byName[loc.Name]; dup {
			return nil, fmt.Errorf("duplicate location %s", loc.Name)
		}
		g.byName[loc.Name] = loc
		g.ordered = append(g.ordered, loc)
	}
	if len(g.ordered) == 0 {
		return nil, fmt.Errorf("gazetteer is empty")
	}
	return g, nil
}

// Lookup returns the location with the given name.
func (g *Gazetteer) Lookup(name string) (Location, bool) {
	loc, ok := g.byName[name]
	return loc, ok
}

// All returns every location in file order. Callers must not modify the
// returned slice.
func (g *Gazetteer) All() []Location {
	return g.ordered
}

// Len returns the number of locations.
func (g *Gazetteer) Len() int {
	return len(g.ordered)
}
