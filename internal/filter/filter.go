// Package filter loads the optional station/country admission list that
// scopes an ingest run, from a small YAML document.
package filter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the on-disk YAML shape:
//
//	countries: ["DE", "FR"]
//	stations:
//	  synop: [10384, 10385]
type document struct {
	Countries []string `yaml:"countries"`
	Stations  struct {
		Synop []int `yaml:"synop"`
	} `yaml:"stations"`
}

// Filter is the resolved, decoder-ready admission list.
type Filter struct {
	// CountryPattern is a regexp alternation fragment built from
	// Countries, ready to splice into the bulletin header pattern.
	CountryPattern string

	// Stations is the WMO-number allow-list; empty admits every station.
	Stations map[int]struct{}
}

// defaultCountryPattern admits any two-letter WMO country code.
const defaultCountryPattern = "[A-Z]{2}"

// NewDefault returns a Filter admitting every country and station, used
// when no filter file is configured.
func NewDefault() *Filter {
	return &Filter{CountryPattern: defaultCountryPattern}
}

// Load reads and parses a filter document from path.
func Load(path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filter: opening %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Filter, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("filter: parsing: %w", err)
	}

	f := &Filter{CountryPattern: defaultCountryPattern}
	if len(doc.Countries) > 0 {
		f.CountryPattern = joinAlternation(doc.Countries)
	}
	if len(doc.Stations.Synop) > 0 {
		f.Stations = make(map[int]struct{}, len(doc.Stations.Synop))
		for _, wmo := range doc.Stations.Synop {
			f.Stations[wmo] = struct{}{}
		}
	}
	return f, nil
}

func joinAlternation(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "|"
		}
		out += item
	}
	return out
}
