package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is a starting map loaded from content.
type Seed struct {
	Name  string
	Start string
	Map   Map
}

// yamlSeedFile is the top-level YAML structure for seed map files.
type yamlSeedFile struct {
	Map yamlSeed `yaml:"map"`
}

type yamlSeed struct {
	Name      string         `yaml:"name"`
	Start     string         `yaml:"start"`
	Locations []yamlLocation `yaml:"locations"`
}

type yamlLocation struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	X           int               `yaml:"x"`
	Y           int               `yaml:"y"`
	Description string            `yaml:"description"`
	Biome       string            `yaml:"biome"`
	Properties  map[string]string `yaml:"properties"`
	Difficulty  int               `yaml:"difficulty"`
	Links       []yamlLink        `yaml:"links"`
	Storages    []yamlStorage     `yaml:"storages"`
	Threats     []yamlThreat      `yaml:"threats"`
}

// yamlLink references its target by location id; links are keyed by
// coordinate once loaded.
type yamlLink struct {
	To            string `yaml:"to"`
	Name          string `yaml:"name"`
	TravelMinutes int    `yaml:"travel_minutes"`
	TwoWay        bool   `yaml:"two_way"`
	Hidden        bool   `yaml:"hidden"`
	Locked        bool   `yaml:"locked"`
}

type yamlStorage struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	Owner    string `yaml:"owner"`
}

type yamlThreat struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	Activity    string `yaml:"activity"`
	Required    int    `yaml:"required"`
}

// LoadSeedFromFile reads and validates a seed map YAML file.
//
// Precondition: path must point to a valid YAML seed file.
// Postcondition: Returns a validated Seed or a non-nil error.
func LoadSeedFromFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed map %s: %w", path, err)
	}
	return LoadSeedFromBytes(data)
}

// LoadSeedFromBytes parses and validates a seed map from YAML bytes.
//
// Postcondition: Returns a Seed whose Map satisfies Validate and whose Start
// names one of its locations, or a non-nil error.
func LoadSeedFromBytes(data []byte) (Seed, error) {
	var file yamlSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Seed{}, fmt.Errorf("parsing seed map YAML: %w", err)
	}
	seed, err := convertYAMLSeed(file.Map)
	if err != nil {
		return Seed{}, fmt.Errorf("validating seed map: %w", err)
	}
	return seed, nil
}

func convertYAMLSeed(ys yamlSeed) (Seed, error) {
	if len(ys.Locations) == 0 {
		return Seed{}, fmt.Errorf("map %q: must contain at least one location", ys.Name)
	}
	coords := make(map[string]Coord, len(ys.Locations))
	locs := make([]Location, 0, len(ys.Locations))
	for _, yl := range ys.Locations {
		if yl.Name == "" {
			return Seed{}, fmt.Errorf("location %q: name must not be empty", yl.ID)
		}
		coords[yl.ID] = Coord{X: yl.X, Y: yl.Y}
	}

	reverse := make(map[string][]Link)
	for _, yl := range ys.Locations {
		here := coords[yl.ID]
		loc := Location{
			ID:          yl.ID,
			Name:        yl.Name,
			Coord:       here,
			Description: strings.TrimSpace(yl.Description),
			Biome:       yl.Biome,
			Properties:  yl.Properties,
			Difficulty:  Difficulty{Overall: yl.Difficulty},
		}
		for _, ylk := range yl.Links {
			target, ok := coords[ylk.To]
			if !ok {
				return Seed{}, fmt.Errorf("location %q: link targets unknown location %q", yl.ID, ylk.To)
			}
			link := Link{
				Target:        target,
				Name:          ylk.Name,
				Direction:     DirectionBetween(here, target),
				TravelMinutes: ylk.TravelMinutes,
				Hidden:        ylk.Hidden,
				Locked:        ylk.Locked,
			}
			loc.Links = append(loc.Links, link)
			if ylk.TwoWay {
				back := link
				back.Target = here
				back.Direction = link.Direction.Opposite()
				reverse[ylk.To] = append(reverse[ylk.To], back)
			}
		}
		for _, s := range yl.Storages {
			loc.Storages = append(loc.Storages, Storage{ID: s.ID, Name: s.Name, Capacity: s.Capacity, Owner: s.Owner})
		}
		for _, yt := range yl.Threats {
			t := Threat{ID: yt.ID, Name: yt.Name, Description: strings.TrimSpace(yt.Description), Level: yt.Level}
			if yt.Activity != "" {
				t.Current = &Activity{Name: yt.Activity, Required: yt.Required}
			}
			loc.Threats = append(loc.Threats, t)
		}
		locs = append(locs, loc)
	}
	for i := range locs {
		for _, back := range reverse[locs[i].ID] {
			if _, exists := locs[i].LinkTo(back.Target); !exists {
				locs[i].Links = append(locs[i].Links, back)
			}
		}
	}

	m, err := NewMap(locs...)
	if err != nil {
		return Seed{}, fmt.Errorf("map %q: %w", ys.Name, err)
	}
	start := ys.Start
	if start == "" {
		start = locs[0].ID
	}
	if _, ok := m.Get(start); !ok {
		return Seed{}, fmt.Errorf("map %q: start %q not found in locations", ys.Name, start)
	}
	return Seed{Name: ys.Name, Start: start, Map: m}, nil
}
