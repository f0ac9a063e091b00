package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Teachers) != 4 {
		t.Fatalf("expected 4 teachers, got %d", len(c.Teachers))
	}
	if len(c.Scenarios) != 8 {
		t.Fatalf("expected 8 scenarios, got %d", len(c.Scenarios))
	}
	if len(c.UserModes) != 2 {
		t.Fatalf("expected 2 user modes, got %d", len(c.UserModes))
	}

	teacher, err := c.Teacher("teacher_steven")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if teacher.Gender != "male" || teacher.VoiceProfile == "" || len(teacher.Catchphrases) == 0 {
		t.Fatalf("teacher record incomplete: %+v", teacher)
	}

	if _, err := c.Scenario("classroom"); err != nil {
		t.Fatalf("scenario lookup: %v", err)
	}
	if _, err := c.UserMode("staff"); err != nil {
		t.Fatalf("user mode lookup: %v", err)
	}
}

func TestLoad_UnknownIDs(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := c.Teacher("nope"); err == nil {
		t.Fatalf("expected error for unknown teacher")
	}
	if _, err := c.Scenario("nope"); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
	if _, err := c.UserMode("nope"); err == nil {
		t.Fatalf("expected error for unknown user mode")
	}
}

func TestMustTeacher_PanicsOnUnknownID(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown id")
		}
	}()
	c.MustTeacher("nope")
}

func TestLoad_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.toml")
	data := `
[[teachers]]
id = "t1"
name = "Teacher One"
gender = "female"
voice_profile = "v"

[[scenarios]]
id = "s1"
name = "S"
context = "ctx"

[[user_modes]]
id = "m1"
name = "M"
context = "ctx"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Teachers) != 1 || c.Teachers[0].ID != "t1" {
		t.Fatalf("override not applied: %+v", c.Teachers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/definitely/not/there.toml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
