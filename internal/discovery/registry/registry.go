// Package registry holds the static lookup tables the discovery engine
// routes with: source descriptors, terminology variants, state GIS portal
// metadata, special-district authorities, and classifier edge cases. All of
// it is loaded once at process start and never mutated afterwards, so
// concurrent readers need no synchronization.
package registry

import (
	"embed"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/CivicAtlas/CA-Boundaries/internal/discovery/boundary"
)

//go:embed data/*.yaml
var dataFS embed.FS

// StatePortal describes one state's authoritative GIS endpoint for a set of
// boundary types, with the redistricting date the freshness strategy reads.
type StatePortal struct {
	State             string
	Authority         string
	URL               string
	Format            string
	LastRedistricting time.Time
	BoundaryTypes     []boundary.Type
}

// DistrictAuthority describes one state's special-district registry.
type DistrictAuthority struct {
	State     string
	Authority string
	URL       string
	Format    string
}

// EdgeCase is a location whose administrative structure changes routing.
type EdgeCase struct {
	Name  string
	State string
	Class boundary.ClassificationType
	FIPS  string
}

type portalFile struct {
	Portals []struct {
		State             string   `yaml:"state"`
		Authority         string   `yaml:"authority"`
		URL               string   `yaml:"url"`
		Format            string   `yaml:"format"`
		LastRedistricting string   `yaml:"last_redistricting"`
		BoundaryTypes     []string `yaml:"boundary_types"`
	} `yaml:"portals"`
}

type authorityFile struct {
	Authorities []struct {
		State     string `yaml:"state"`
		Authority string `yaml:"authority"`
		URL       string `yaml:"url"`
		Format    string `yaml:"format"`
	} `yaml:"authorities"`
}

type edgeCaseFile struct {
	EdgeCases []struct {
		Name  string `yaml:"name"`
		State string `yaml:"state"`
		Class string `yaml:"class"`
		FIPS  string `yaml:"fips"`
	} `yaml:"edge_cases"`
}

type portalKey struct {
	state string
	bt    boundary.Type
}

type edgeKey struct {
	name  string
	state string
}

var (
	loadOnce    sync.Once
	portals     map[portalKey]StatePortal
	authorities map[string]DistrictAuthority
	edgeCases   map[edgeKey]EdgeCase
)

// load parses the embedded YAML registries. The data is fixed at compile
// time, so a parse failure is a build defect and aborts the process.
func load() {
	var err error
	portals, err = loadPortals()
	if err != nil {
		log.Fatal("registry: load state portals: ", err)
	}
	authorities, err = loadAuthorities()
	if err != nil {
		log.Fatal("registry: load special-district authorities: ", err)
	}
	edgeCases, err = loadEdgeCases()
	if err != nil {
		log.Fatal("registry: load classifier edge cases: ", err)
	}
}

func loadPortals() (map[portalKey]StatePortal, error) {
	raw, err := dataFS.ReadFile("data/stateportals.yaml")
	if err != nil {
		return nil, err
	}
	var file portalFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse stateportals.yaml: %w", err)
	}

	out := make(map[portalKey]StatePortal)
	for _, p := range file.Portals {
		redistricted, err := time.Parse("2006-01-02", p.LastRedistricting)
		if err != nil {
			return nil, fmt.Errorf("portal %s: bad last_redistricting %q: %w", p.State, p.LastRedistricting, err)
		}
		var types []boundary.Type
		for _, bt := range p.BoundaryTypes {
			t := boundary.Type(bt)
			if !t.Valid() {
				return nil, fmt.Errorf("portal %s: unknown boundary type %q", p.State, bt)
			}
			types = append(types, t)
		}
		portal := StatePortal{
			State:             strings.ToUpper(p.State),
			Authority:         p.Authority,
			URL:               p.URL,
			Format:            p.Format,
			LastRedistricting: redistricted,
			BoundaryTypes:     types,
		}
		for _, t := range types {
			out[portalKey{portal.State, t}] = portal
		}
	}
	return out, nil
}

func loadAuthorities() (map[string]DistrictAuthority, error) {
	raw, err := dataFS.ReadFile("data/specialdistricts.yaml")
	if err != nil {
		return nil, err
	}
	var file authorityFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse specialdistricts.yaml: %w", err)
	}

	out := make(map[string]DistrictAuthority, len(file.Authorities))
	for _, a := range file.Authorities {
		out[strings.ToUpper(a.State)] = DistrictAuthority{
			State:     strings.ToUpper(a.State),
			Authority: a.Authority,
			URL:       a.URL,
			Format:    a.Format,
		}
	}
	return out, nil
}

func loadEdgeCases() (map[edgeKey]EdgeCase, error) {
	raw, err := dataFS.ReadFile("data/edgecases.yaml")
	if err != nil {
		return nil, err
	}
	var file edgeCaseFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse edgecases.yaml: %w", err)
	}

	out := make(map[edgeKey]EdgeCase, len(file.EdgeCases))
	for _, e := range file.EdgeCases {
		class := boundary.ClassificationType(e.Class)
		switch class {
		case boundary.ClassIndependentCity, boundary.ClassConsolidatedCityCounty,
			boundary.ClassFederalDistrict, boundary.ClassMultiCountyCity:
		default:
			return nil, fmt.Errorf("edge case %q: unknown class %q", e.Name, e.Class)
		}
		out[edgeKey{e.Name, strings.ToUpper(e.State)}] = EdgeCase{
			Name:  e.Name,
			State: strings.ToUpper(e.State),
			Class: class,
			FIPS:  e.FIPS,
		}
	}
	return out, nil
}

// PortalFor returns the state GIS portal entry for (state, boundary type).
func PortalFor(state string, t boundary.Type) (StatePortal, bool) {
	loadOnce.Do(load)
	p, ok := portals[portalKey{strings.ToUpper(state), t}]
	return p, ok
}

// AuthorityFor returns the special-district authority for a state.
func AuthorityFor(state string) (DistrictAuthority, bool) {
	loadOnce.Do(load)
	a, ok := authorities[strings.ToUpper(state)]
	return a, ok
}

// EdgeCaseFor returns the edge case for a normalized place name and state.
// The caller is responsible for normalizing the name; see the classifier.
func EdgeCaseFor(normalizedName, state string) (EdgeCase, bool) {
	loadOnce.Do(load)
	e, ok := edgeCases[edgeKey{normalizedName, strings.ToUpper(state)}]
	return e, ok
}
