package catalog

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()

	if got := c.Last(); got != 5 {
		t.Fatalf("Last() = %d, want 5", got)
	}

	codes := map[int]string{2: "ZEBRA", 3: "PIZZA", 4: "JAZZ"}
	for _, s := range c.Stages {
		if got := s.AccessCode; got != codes[s.ID] {
			t.Errorf("stage %d access code = %q, want %q", s.ID, got, codes[s.ID])
		}
	}

	hints := c.Hints()
	if len(hints) != 4 {
		t.Fatalf("hints for %d stages, want 4", len(hints))
	}
	if _, ok := hints[0]; ok {
		t.Error("intro stage should have no hint")
	}

	if got := c.RegionLabel("night"); got != "밤의 지역" {
		t.Errorf("RegionLabel(night) = %q", got)
	}
	if got := c.RegionLabel("orbit"); got != "orbit" {
		t.Errorf("RegionLabel(orbit) = %q", got)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"gap in ids", `
stages:
  - {id: 0}
  - {id: 2, final: true}
answers: {stage1: x, stage2Keywords: [y], stage3: {region: night, latitudeMax: 1}}`},
		{"no final", `
stages:
  - {id: 0}
  - {id: 1}
answers: {stage1: x, stage2Keywords: [y], stage3: {region: night, latitudeMax: 1}}`},
		{"bad mode", `
stages:
  - {id: 0}
  - {id: 1, final: true}
answers:
  stage1: x
  stage2Keywords: [y]
  stage3: {region: night, latitudeMax: 1}
  phases: {q: {mode: fuzzy, accept: [a]}}`},
		{"inverted range", `
stages:
  - {id: 0}
  - {id: 1, final: true}
answers: {stage1: x, stage2Keywords: [y], stage3: {region: night, latitudeMin: 60, latitudeMax: 30}}`},
		{"unknown field", `
stages:
  - {id: 0, colour: red}
  - {id: 1, final: true}
answers: {stage1: x, stage2Keywords: [y], stage3: {region: night}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMinimal(t *testing.T) {
	doc := `
stages:
  - {id: 0, title: intro}
  - {id: 1, title: only, hint: think, final: true}
answers: {stage1: abc, stage2Keywords: [k], stage3: {region: night, latitudeMin: 1, latitudeMax: 2}}`

	c, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, ok := c.Stage(1)
	if !ok || s.Title != "only" || !s.Final {
		t.Fatalf("Stage(1) = %+v, %v", s, ok)
	}
	if _, ok := c.Stage(2); ok {
		t.Fatal("Stage(2) should not exist")
	}
}
