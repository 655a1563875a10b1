package answers

import (
	"testing"

	"github.com/playperu/proxima/internal/catalog"
)

func newChecker() *Checker {
	return New(catalog.Default().Answers, Code("tlsekq"))
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Proxima B ", "proximab"},
		{"프록시마b 적색왜성\t4.24", "프록시마b적색왜성4.24"},
		{"TWI　LIGHT", "twilight"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStage1(t *testing.T) {
	c := newChecker()
	tests := []struct {
		input string
		want  bool
	}{
		{"프록시마b 적색왜성 4.24", true},
		{"프록시마B적색왜성4.24", true},
		{"프록시마b적색왜성4.2", false},
		{"프록시마b적색왜성4.245", false},
		{"", false},
		{"tlsekq", true},
		{"  tlsekq  ", true},
		{"TLSEKQ", false},
	}
	for _, tt := range tests {
		if got := c.Stage1(tt.input); got != tt.want {
			t.Errorf("Stage1(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStage2(t *testing.T) {
	c := newChecker()
	tests := []struct {
		input string
		want  bool
	}{
		{"황혼 지역", true},
		{"낮과 밤의 경계", true},
		{"Twilight Zone", true},
		{"the TERMINATOR line", true},
		{"황", true},
		{"낮의 지역", false},
		{"   ", false},
		{"tlsekq", true},
	}
	for _, tt := range tests {
		if got := c.Stage2(tt.input); got != tt.want {
			t.Errorf("Stage2(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStage3(t *testing.T) {
	c := newChecker()
	tests := []struct {
		name             string
		region, latitude string
		extra            string
		want             RegionResult
	}{
		{"valid", "night", "45", "", RegionResult{true, true, true}},
		{"latitude out of range", "night", "75", "", RegionResult{false, true, false}},
		{"wrong region", "day", "45", "", RegionResult{false, false, true}},
		{"both wrong", "twilight", "10", "", RegionResult{false, false, false}},
		{"inclusive bounds low", "night", "30", "", RegionResult{true, true, true}},
		{"inclusive bounds high", "night", "60.0", "", RegionResult{true, true, true}},
		{"unit suffix", "night", "45도", "", RegionResult{true, true, true}},
		{"not a number", "night", "north", "", RegionResult{false, true, false}},
		{"override in latitude", "day", "tlsekq", "", RegionResult{true, true, true}},
		{"override in extra", "", "", "tlsekq", RegionResult{true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Stage3(tt.region, tt.latitude, tt.extra); got != tt.want {
				t.Errorf("Stage3(%q, %q) = %+v, want %+v", tt.region, tt.latitude, got, tt.want)
			}
		})
	}
}

func TestStage4(t *testing.T) {
	c := newChecker()

	got := c.Stage4("success", "30", "12초")
	if !got.Valid || !got.Success || got.Override {
		t.Errorf("success = %+v", got)
	}
	if got.Capture["angle"] != "30" || got.Capture["time"] != "12초" {
		t.Errorf("capture = %v", got.Capture)
	}

	got = c.Stage4("fail", "", "")
	if !got.Valid || got.Success {
		t.Errorf("fail = %+v", got)
	}

	got = c.Stage4("maybe", "", "")
	if got.Valid {
		t.Errorf("unknown result accepted: %+v", got)
	}

	got = c.Stage4("fail", "tlsekq", "")
	if !got.Valid || !got.Success || !got.Override {
		t.Errorf("override = %+v", got)
	}
	if got.Capture["result"] != MissionSuccess || got.Capture["angle"] != OverrideMarker {
		t.Errorf("override capture = %v", got.Capture)
	}
}

func TestOverrideBypassesEveryStage(t *testing.T) {
	c := newChecker()
	const code = "tlsekq"

	if !c.Stage1(code) || !c.Stage2(code) {
		t.Fatal("override rejected by stage 1 or 2")
	}
	if r := c.Stage3("nowhere", code, ""); !r.Valid {
		t.Fatal("override rejected by stage 3")
	}
	if r := c.Stage4("", code, ""); !r.Valid || !r.Success {
		t.Fatal("override rejected by stage 4")
	}
	for key := range catalog.Default().Answers.Phases {
		if ok, _ := c.Phase(key, code); !ok {
			t.Errorf("override rejected by phase %s", key)
		}
	}
}

func TestPhase(t *testing.T) {
	c := newChecker()
	tests := []struct {
		key, input string
		want       bool
	}{
		{"stage2-q1", "프록시마 센타우리", true},
		{"stage2-q1", "별", true},
		{"stage2-q1", "행성", false},
		{"stage2-q2", "조석 고정", true},
		{"stage2-q2", "조석고정 현상", true},
		{"stage2-q2", "공전", false},
		{"star-angle", "약 30도", true},
		{"star-angle", "15도", false},
		{"stage3-q1", "SLOW", true},
		{"stage3-q1", "slowly", false},
		{"stage3-q2", "Night side", true},
		{"stage3-q2", "밤", true},
		{"stage3-q2", "낮", false},
		{"stage3-q2", "", false},
	}
	for _, tt := range tests {
		ok, known := c.Phase(tt.key, tt.input)
		if !known {
			t.Fatalf("Phase(%q) unknown key", tt.key)
		}
		if ok != tt.want {
			t.Errorf("Phase(%q, %q) = %v, want %v", tt.key, tt.input, ok, tt.want)
		}
	}

	if _, known := c.Phase("observation", "anything"); known {
		t.Error("observation should not be an answer key")
	}
}

func TestHashedCode(t *testing.T) {
	hash, err := HashCode("tlsekq")
	if err != nil {
		t.Fatalf("HashCode: %v", err)
	}
	o := NewOverride("", hash)

	if !o.Match(" tlsekq ") {
		t.Error("hashed override rejected the code")
	}
	if o.Match("TLSEKQ") || o.Match("") {
		t.Error("hashed override accepted a wrong code")
	}

	c := New(catalog.Default().Answers, o)
	if !c.Stage1("tlsekq") {
		t.Error("checker ignored hashed override")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"45", 45, true},
		{" 45.5도", 45.5, true},
		{"-3", -3, true},
		{".5", 0.5, true},
		{"도45", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
