package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BonusDef is the content-file form of a structured bonus.
type BonusDef struct {
	Target      string `yaml:"target"`
	Value       int    `yaml:"value"`
	ValueType   string `yaml:"value_type"`
	Application string `yaml:"application"`
	Condition   string `yaml:"condition"`
}

// SkillDef is a passive skill granted at creation. Older content files carry
// bonuses as "+N Name" strings in Legacy instead of Bonuses.
type SkillDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Bonuses     []BonusDef `yaml:"bonuses"`
	Legacy      []string   `yaml:"legacy_bonuses"`
}

// ItemDef is a starting item granted at creation. A non-empty Slot equips it.
type ItemDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Slot        string     `yaml:"slot"`
	Weight      float64    `yaml:"weight"`
	Quantity    int        `yaml:"quantity"`
	Bonuses     []BonusDef `yaml:"bonuses"`
	Legacy      []string   `yaml:"legacy_bonuses"`
}

// Class defines a playable character class for character creation.
//
// Precondition: ID and Name must be non-empty after loading.
type Class struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	Bonuses       map[string]int `yaml:"bonuses"`
	Skills        []SkillDef     `yaml:"skills"`
	StartingItems []ItemDef      `yaml:"starting_items"`
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	classes := make([]*Class, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("class file %s: id and name must not be empty", path)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
