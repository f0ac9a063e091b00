package persona

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed personas.toml
var embeddedCatalog []byte

// Catalog is the read-only registry of teachers, scenarios and user modes.
// Unknown ids are a configuration error, not a runtime condition: callers
// that own validated Settings should use the Must variants.
type Catalog struct {
	Teachers  []Teacher  `toml:"teachers"`
	Scenarios []Scenario `toml:"scenarios"`
	UserModes []UserMode `toml:"user_modes"`

	teachersByID  map[string]Teacher
	scenariosByID map[string]Scenario
	userModesByID map[string]UserMode
}

// Load returns the built-in catalog. If path is non-empty the TOML file at
// that location replaces the embedded data.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("persona: read catalog %s: %w", path, err)
		}
		data = b
	}

	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("persona: decode catalog: %w", err)
	}
	if len(c.Teachers) == 0 || len(c.Scenarios) == 0 || len(c.UserModes) == 0 {
		return nil, fmt.Errorf("persona: catalog incomplete: %d teachers, %d scenarios, %d user modes",
			len(c.Teachers), len(c.Scenarios), len(c.UserModes))
	}

	c.teachersByID = make(map[string]Teacher, len(c.Teachers))
	for _, t := range c.Teachers {
		c.teachersByID[t.ID] = t
	}
	c.scenariosByID = make(map[string]Scenario, len(c.Scenarios))
	for _, s := range c.Scenarios {
		c.scenariosByID[s.ID] = s
	}
	c.userModesByID = make(map[string]UserMode, len(c.UserModes))
	for _, m := range c.UserModes {
		c.userModesByID[m.ID] = m
	}
	return &c, nil
}

// Teacher looks up a teacher by id.
func (c *Catalog) Teacher(id string) (Teacher, error) {
	t, ok := c.teachersByID[id]
	if !ok {
		return Teacher{}, fmt.Errorf("persona: unknown teacher id %q", id)
	}
	return t, nil
}

// Scenario looks up a scenario by id.
func (c *Catalog) Scenario(id string) (Scenario, error) {
	s, ok := c.scenariosByID[id]
	if !ok {
		return Scenario{}, fmt.Errorf("persona: unknown scenario id %q", id)
	}
	return s, nil
}

// UserMode looks up a user mode by id.
func (c *Catalog) UserMode(id string) (UserMode, error) {
	m, ok := c.userModesByID[id]
	if !ok {
		return UserMode{}, fmt.Errorf("persona: unknown user mode id %q", id)
	}
	return m, nil
}

// MustTeacher panics on an unknown id. Settings ids are validated before
// they reach the session, so a miss here is a programming error.
func (c *Catalog) MustTeacher(id string) Teacher {
	t, err := c.Teacher(id)
	if err != nil {
		panic(err)
	}
	return t
}

// MustScenario panics on an unknown id.
func (c *Catalog) MustScenario(id string) Scenario {
	s, err := c.Scenario(id)
	if err != nil {
		panic(err)
	}
	return s
}

// MustUserMode panics on an unknown id.
func (c *Catalog) MustUserMode(id string) UserMode {
	m, err := c.UserMode(id)
	if err != nil {
		panic(err)
	}
	return m
}
