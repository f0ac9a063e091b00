package persona

// Teacher describes one of the fixed foreign-teacher personas. Records are
// loaded once at startup and never mutated.
type Teacher struct {
	ID                string   `toml:"id" json:"id"`
	Name              string   `toml:"name" json:"name"`
	Nationality       string   `toml:"nationality" json:"nationality"`
	Gender            string   `toml:"gender" json:"gender"`
	Experience        string   `toml:"experience" json:"experience"`
	Subjects          string   `toml:"subjects" json:"subjects"`
	Personality       string   `toml:"personality" json:"personality"`
	TeachingStyle     string   `toml:"teaching_style" json:"teaching_style"`
	VoiceProfile      string   `toml:"voice_profile" json:"voice_profile"`
	Catchphrases      []string `toml:"catchphrases" json:"catchphrases"`
	SpecialTechniques []string `toml:"special_techniques" json:"special_techniques"`
}

// Scenario is a conversation setting whose context line is injected into the
// system prompt.
type Scenario struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`
	Context     string `toml:"context" json:"context"`
}

// UserMode adjusts the persona's register for the kind of user talking to it.
type UserMode struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`
	Context     string `toml:"context" json:"context"`
}
