// Package answers validates player input for each stage. Every check tries
// the override code first.
package answers

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/playperu/proxima/internal/catalog"
)

// Mission outcomes accepted by Stage4.
const (
	MissionSuccess = "success"
	MissionFail    = "fail"
)

// OverrideMarker replaces measured values captured under the override code.
const OverrideMarker = "MASTER"

type Checker struct {
	answers  catalog.Answers
	override Override
	stage1   string
}

func New(a catalog.Answers, o Override) *Checker {
	return &Checker{
		answers:  a,
		override: o,
		stage1:   Normalize(a.Stage1),
	}
}

// Normalize lowercases s and removes all whitespace.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the number at the start of s, ignoring trailing text
// such as a unit ("45도" is 45).
func ParseNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsOverride reports whether input is the override code.
func (c *Checker) IsOverride(input string) bool {
	return c.override != nil && c.override.Match(input)
}

// Stage1 checks the security code.
func (c *Checker) Stage1(input string) bool {
	if c.IsOverride(input) {
		return true
	}
	n := Normalize(input)
	return n != "" && n == c.stage1
}

// Stage2 checks the survival zone against the keyword list.
func (c *Checker) Stage2(input string) bool {
	if c.IsOverride(input) {
		return true
	}
	return eitherContains(Normalize(input), c.answers.Stage2Keywords)
}

type RegionResult struct {
	Valid         bool `json:"isValid"`
	RegionValid   bool `json:"regionValid"`
	LatitudeValid bool `json:"latitudeValid"`
}

// Stage3 checks the region and latitude independently. The override code
// is accepted in the latitude field or in extra.
func (c *Checker) Stage3(region, latitude, extra string) RegionResult {
	if c.IsOverride(latitude) || c.IsOverride(extra) {
		return RegionResult{Valid: true, RegionValid: true, LatitudeValid: true}
	}
	a := c.answers.Stage3
	res := RegionResult{RegionValid: region == a.Region}
	if lat, ok := ParseNumber(latitude); ok {
		res.LatitudeValid = lat >= a.LatitudeMin && lat <= a.LatitudeMax
	}
	res.Valid = res.RegionValid && res.LatitudeValid
	return res
}

type MissionResult struct {
	Valid    bool
	Success  bool
	Override bool
	Capture  map[string]string
}

// Stage4 accepts either mission outcome and shapes the captured data.
func (c *Checker) Stage4(result, angle, flightTime string) MissionResult {
	if c.IsOverride(angle) || c.IsOverride(flightTime) {
		return MissionResult{
			Valid:    true,
			Success:  true,
			Override: true,
			Capture: map[string]string{
				"result": MissionSuccess,
				"angle":  OverrideMarker,
				"time":   OverrideMarker,
			},
		}
	}
	return MissionResult{
		Valid:   result == MissionSuccess || result == MissionFail,
		Success: result == MissionSuccess,
		Capture: map[string]string{
			"result": result,
			"angle":  strings.TrimSpace(angle),
			"time":   strings.TrimSpace(flightTime),
		},
	}
}

// HasPhase reports whether the catalog has an answer for key.
func (c *Checker) HasPhase(key string) bool {
	_, ok := c.answers.Phases[key]
	return ok
}

// Phase checks an in-stage question by its validation key. known is false
// when the catalog has no answer for key.
func (c *Checker) Phase(key, input string) (ok, known bool) {
	a, found := c.answers.Phases[key]
	if !found {
		return false, false
	}
	if c.IsOverride(input) {
		return true, true
	}
	n := Normalize(input)
	if n == "" {
		return false, true
	}
	switch a.Mode {
	case catalog.MatchExact:
		for _, want := range a.Accept {
			if n == Normalize(want) {
				return true, true
			}
		}
		return false, true
	case catalog.MatchContains:
		for _, want := range a.Accept {
			if strings.Contains(n, Normalize(want)) {
				return true, true
			}
		}
		return false, true
	default:
		return eitherContains(n, a.Accept), true
	}
}

func eitherContains(n string, accept []string) bool {
	if n == "" {
		return false
	}
	for _, want := range accept {
		w := Normalize(want)
		if w == "" {
			continue
		}
		if strings.Contains(n, w) || strings.Contains(w, n) {
			return true
		}
	}
	return false
}
