// Package catalog loads the mission content: stages, phases, access codes,
// hint texts and the answer key.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed proxima.yaml
var defaultCatalog []byte

// Match modes for phase answers.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
	MatchEither   = "either"
)

type Phase struct {
	Name     string   `yaml:"name"`
	Validate []string `yaml:"validate"`
}

type Stage struct {
	ID         int     `yaml:"id"`
	Title      string  `yaml:"title"`
	AccessCode string  `yaml:"accessCode"`
	Phases     []Phase `yaml:"phases"`
	Hint       string  `yaml:"hint"`
	Final      bool    `yaml:"final"`
}

type PhaseAnswer struct {
	Mode   string   `yaml:"mode"`
	Accept []string `yaml:"accept"`
}

type RegionAnswer struct {
	Region        string            `yaml:"region"`
	LatitudeMin   float64           `yaml:"latitudeMin"`
	LatitudeMax   float64           `yaml:"latitudeMax"`
	RotationSpeed string            `yaml:"rotationSpeed"`
	DefaultAngle  string            `yaml:"defaultAngle"`
	RegionLabels  map[string]string `yaml:"regionLabels"`
}

type Answers struct {
	Stage1         string                 `yaml:"stage1"`
	Stage2Keywords []string               `yaml:"stage2Keywords"`
	Stage3         RegionAnswer           `yaml:"stage3"`
	Phases         map[string]PhaseAnswer `yaml:"phases"`
}

type Catalog struct {
	Stages  []Stage `yaml:"stages"`
	Answers Answers `yaml:"answers"`
}

// Default returns the embedded mission.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load decodes and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c *Catalog) Validate() error {
	if len(c.Stages) < 2 {
		return errors.New("catalog needs an intro stage and at least one puzzle stage")
	}
	for i, s := range c.Stages {
		if s.ID != i {
			return fmt.Errorf("stage %d: ids must run 0..N in order, got %d", i, s.ID)
		}
		seen := make(map[string]bool, len(s.Phases))
		for _, p := range s.Phases {
			if p.Name == "" {
				return fmt.Errorf("stage %d: phase name is required", s.ID)
			}
			if seen[p.Name] {
				return fmt.Errorf("stage %d: duplicate phase %q", s.ID, p.Name)
			}
			seen[p.Name] = true
		}
	}
	if !c.Stages[len(c.Stages)-1].Final {
		return errors.New("last stage must be marked final")
	}
	if c.Answers.Stage1 == "" {
		return errors.New("answers.stage1 is required")
	}
	if len(c.Answers.Stage2Keywords) == 0 {
		return errors.New("answers.stage2Keywords is required")
	}
	r := c.Answers.Stage3
	if r.Region == "" {
		return errors.New("answers.stage3.region is required")
	}
	if r.LatitudeMin > r.LatitudeMax {
		return fmt.Errorf("answers.stage3: latitude range %v..%v is empty", r.LatitudeMin, r.LatitudeMax)
	}
	for key, a := range c.Answers.Phases {
		switch a.Mode {
		case MatchExact, MatchContains, MatchEither:
		default:
			return fmt.Errorf("answers.phases.%s: unknown mode %q", key, a.Mode)
		}
		if len(a.Accept) == 0 {
			return fmt.Errorf("answers.phases.%s: accept list is empty", key)
		}
	}
	return nil
}

// Stage returns stage n.
func (c *Catalog) Stage(n int) (Stage, bool) {
	if n < 0 || n >= len(c.Stages) {
		return Stage{}, false
	}
	return c.Stages[n], true
}

// Check satisfies health.Checker.
func (c *Catalog) Check(context.Context) error { return c.Validate() }

// Last is the id of the final stage.
func (c *Catalog) Last() int { return len(c.Stages) - 1 }

// Hints maps stage ids to hint texts for stages that have one.
func (c *Catalog) Hints() map[int]string {
	out := make(map[int]string)
	for _, s := range c.Stages {
		if s.Hint != "" {
			out[s.ID] = s.Hint
		}
	}
	return out
}

// RegionLabel returns the display label for a stage 3 region value.
func (c *Catalog) RegionLabel(region string) string {
	if l, ok := c.Answers.Stage3.RegionLabels[region]; ok {
		return l
	}
	return region
}
