package stages

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/playperu/proxima/internal/answers"
	"github.com/playperu/proxima/internal/storage"
)

// Validation keys handled here rather than by the answer key.
const (
	keyObservation = "observation"
	keyMeasure     = "stage4-measure"
	keyLaunchAngle = "stage4-angle"
	keyStarAngle   = "star-angle"
)

const minObservationRunes = 10

var (
	measureInner = []string{"inner-1", "inner-2", "inner-3"}
	measureOuter = []string{"outer-1", "outer-2", "outer-3"}
	launchFields = []string{"calc-period", "calc-speed", "calc-travel", "stage4-angle"}
)

// knownKey reports whether key names a check this package can run.
func (c *Controller) knownKey(key string) bool {
	switch key {
	case keyObservation, keyMeasure, keyLaunchAngle:
		return true
	}
	return c.check.HasPhase(key)
}

type phaseCapture struct {
	key    string
	fields storage.Capture
}

// validatePhase runs one validation key against the submitted fields.
func (c *Controller) validatePhase(key string, fields map[string]string) (phaseCapture, error) {
	get := func(name string) string { return strings.TrimSpace(fields[name]) }

	if ok, known := c.check.Phase(key, fields[key]); known {
		if get(key) == "" {
			return phaseCapture{}, missing("답을 입력해주세요.")
		}
		if !ok {
			return phaseCapture{}, incorrect("✗ 다시 생각해보세요.")
		}
		if key == keyStarAngle && !c.check.IsOverride(get(key)) {
			angle := strings.TrimSuffix(get(key), "도")
			return phaseCapture{key: "stage3", fields: storage.Capture{"angle": strings.TrimSpace(angle) + "도"}}, nil
		}
		return phaseCapture{}, nil
	}

	switch key {
	case keyObservation:
		text := get(keyObservation)
		if utf8.RuneCountInString(text) < minObservationRunes {
			return phaseCapture{}, missing(fmt.Sprintf("관찰 내용을 %d자 이상 적어주세요.", minObservationRunes))
		}
		return phaseCapture{key: "stage2", fields: storage.Capture{"observation": text}}, nil

	case keyMeasure:
		inner, okInner := average(fields, measureInner)
		outer, okOuter := average(fields, measureOuter)
		if !okInner || !okOuter {
			return phaseCapture{}, missing("측정값을 모두 입력해주세요.")
		}
		if inner <= 0 || outer <= 0 {
			return phaseCapture{}, incorrect("✗ 측정값을 다시 확인해주세요.")
		}
		return phaseCapture{key: "stage4Averages", fields: storage.Capture{
			"inner": fmt.Sprintf("%.1f", inner),
			"outer": fmt.Sprintf("%.1f", outer),
		}}, nil

	case keyLaunchAngle:
		capture := storage.Capture{}
		for _, f := range launchFields {
			v := get(f)
			if v == "" {
				return phaseCapture{}, missing("계산 결과를 모두 입력해주세요.")
			}
			capture[f] = v
		}
		return phaseCapture{key: "stage4Calc", fields: capture}, nil
	}

	return phaseCapture{}, ErrInvalidPhase
}

func average(fields map[string]string, names []string) (float64, bool) {
	var sum float64
	for _, n := range names {
		v, ok := answers.ParseNumber(fields[n])
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(names)), true
}
