// Package report builds the mission report from the saved record.
package report

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/playperu/proxima/internal/score"
	"github.com/playperu/proxima/internal/storage"
)

const (
	defaultTeam   = "익명 팀"
	defaultAngle  = "15도"
	defaultSpeed  = "15도/시간"
	defaultStar   = "적색왜성"
	defaultRotate = "동주기 자전"
	blank         = "-"
)

// Report is the flattened mission report.
type Report struct {
	Team        string `json:"team"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Hints       string `json:"hints"`
	Penalty     string `json:"penalty"`
	Score       int    `json:"score"`
	Completed   bool   `json:"completed"`
	StarType    string `json:"starType"`
	Rotation    string `json:"planetRotation"`
	Zone        string `json:"survivalZone"`
	Reason      string `json:"reason"`
	Observation string `json:"observation"`
	StarAngle   string `json:"angle"`
	Speed       string `json:"speed"`
	Location    string `json:"location"`
	Latitude    string `json:"latitude"`
	Inner       string `json:"inner"`
	Outer       string `json:"outer"`
	LaunchAngle string `json:"launchAngle"`
	FlightTime  string `json:"flightTime"`
	Mission     string `json:"mission"`
}

// Build flattens st into a Report dated now.
func Build(st storage.GameState, now time.Time) Report {
	s2 := st.StageData["stage2"]
	s3 := st.StageData["stage3"]
	s4 := st.StageData["stage4"]
	avg := st.StageData["stage4Averages"]

	penalty := score.Penalty(st.HintCount)
	return Report{
		Team:        or(st.TeamName, defaultTeam),
		Date:        now.Format("2006-01-02"),
		Time:        score.FormatElapsed(st.ElapsedTime),
		Hints:       score.FormatHints(st.HintCount),
		Penalty:     score.FormatPenalty(penalty),
		Score:       score.Final(st.ElapsedTime, st.HintCount),
		Completed:   st.IsCompleted,
		StarType:    or(s2["starType"], defaultStar),
		Rotation:    or(s2["planetRotation"], defaultRotate),
		Zone:        or(s2["survivalZone"], blank),
		Reason:      or(s2["reason"], blank),
		Observation: or(s2["observation"], blank),
		StarAngle:   or(s3["angle"], defaultAngle),
		Speed:       or(s3["speed"], defaultSpeed),
		Location:    or(s3["location"], blank),
		Latitude:    or(s3["latitude"], blank),
		Inner:       or(avg["inner"], blank),
		Outer:       or(avg["outer"], blank),
		LaunchAngle: or(s4["angle"], blank),
		FlightTime:  or(s4["time"], blank),
		Mission:     mission(s4["result"]),
	}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func mission(result string) string {
	switch result {
	case "success":
		return "성공"
	case "fail":
		return "실패"
	default:
		return blank
	}
}

var markdown = template.Must(template.New("report").Parse(`# PROXIMA RESCUE COMMAND 임무 보고서

| 항목 | 값 |
|---|---|
| 팀 | {{.Team}} |
| 날짜 | {{.Date}} |
| 소요 시간 | {{.Time}} |
| 힌트 사용 | {{.Hints}} ({{.Penalty}}) |
| 최종 점수 | {{.Score}}점 |

## 1. 생존 구역 탐색

- 항성 종류: {{.StarType}}
- 행성 자전: {{.Rotation}}
- 생존 가능 구역: {{.Zone}}
- 선정 이유: {{.Reason}}
- 관찰 기록: {{.Observation}}

## 2. 좌표 추적

- 별 궤적 각도: {{.StarAngle}}
- 자전 속도: {{.Speed}}
- 위치: {{.Location}}
- 위도: {{.Latitude}}

## 3. 궤도 구조 작전

- 내행성 평균 공전 시간: {{.Inner}}
- 외행성 평균 공전 시간: {{.Outer}}
- Transfer Window: {{.LaunchAngle}}
- 비행 시간: {{.FlightTime}}
- 임무 결과: {{.Mission}}
`))

// Markdown renders the report as a Markdown document.
func (r Report) Markdown() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// Filename is the suggested download name.
func (r Report) Filename() string {
	return fmt.Sprintf("Proxima_Mission_Report_%s.md", r.Team)
}
