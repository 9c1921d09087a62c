package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	tpl, ok := c.Lookup("dj-party")
	if !ok {
		t.Fatalf("dj-party template missing")
	}
	if tpl.CategoryID != "music" || tpl.DurationMinutes != 240 || len(tpl.EventTypes) != 3 {
		t.Fatalf("unexpected template: %+v", tpl)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Fatalf("unknown id should not resolve")
	}
	for _, tpl := range c.All("music") {
		if tpl.CategoryID != "music" {
			t.Fatalf("category filter leaked %q", tpl.ID)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	data := []byte("templates:\n  - id: choir\n    name: Choir\n    category_id: music\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if all := c.All(""); len(all) != 1 || all[0].ID != "choir" {
		t.Fatalf("unexpected catalog: %+v", all)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"missing id": "templates:\n  - name: x\n",
		"duplicate":  "templates:\n  - id: a\n  - id: a\n",
		"not yaml":   "templates: [",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	c, _ := Load("")
	a, _ := c.Lookup("dj-party")
	a.EventTypes[0] = "mutated"
	b, _ := c.Lookup("dj-party")
	if b.EventTypes[0] == "mutated" {
		t.Fatalf("Lookup leaked internal slice")
	}
}
