package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("game.forfeit", map[string]string{"Name": "alice"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "alice left the game" {
		t.Fatalf("rendered %q", out)
	}
	out, err = c.Render("game.draw", nil)
	if err != nil || out != "Game drawn" {
		t.Fatalf("Render(game.draw) = %q, %v", out, err)
	}
}

func TestRenderUnknownKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("game.nonexistent", nil); err == nil {
		t.Fatalf("unknown key should error")
	}
}

func TestRenderMissingDataKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("game.win", map[string]string{"Wrong": "x"}); err == nil {
		t.Fatalf("missing template variable should error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "game:\n  win: \"victory for {{.Name}}\"\n"
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("game.win", map[string]string{"Name": "bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "victory for bob" {
		t.Fatalf("override not applied: %q", out)
	}
	// untouched keys keep their embedded defaults
	out, err = c.Render("game.forfeit", map[string]string{"Name": "bob"})
	if err != nil || out != "bob left the game" {
		t.Fatalf("default lost after override: %q, %v", out, err)
	}
}

func TestMissingOverrideDir(t *testing.T) {
	if _, err := New("/no/such/dir"); err == nil {
		t.Fatalf("unreadable override dir should error")
	}
}
