package storage

// Capture holds the free-form answers recorded for one stage, keyed by field.
type Capture map[string]string

// GameState is the single persisted record.
type GameState struct {
	CurrentStage       int                `json:"currentStage"`
	StartTimestamp     *int64             `json:"startTimestamp"`
	ElapsedTime        int                `json:"elapsedTime"`
	HintCount          int                `json:"hintCount"`
	TeamName           string             `json:"teamName"`
	StageData          map[string]Capture `json:"stageData"`
	IsCompleted        bool               `json:"isCompleted"`
	CompletedTimestamp *int64             `json:"completedTimestamp"`
}

// Defaults returns the record a fresh game starts from.
func Defaults() GameState {
	return GameState{StageData: map[string]Capture{}}
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	out := s
	if s.StartTimestamp != nil {
		v := *s.StartTimestamp
		out.StartTimestamp = &v
	}
	if s.CompletedTimestamp != nil {
		v := *s.CompletedTimestamp
		out.CompletedTimestamp = &v
	}
	if s.StageData != nil {
		out.StageData = make(map[string]Capture, len(s.StageData))
		for k, c := range s.StageData {
			if c == nil {
				out.StageData[k] = nil
				continue
			}
			cc := make(Capture, len(c))
			for f, v := range c {
				cc[f] = v
			}
			out.StageData[k] = cc
		}
	}
	return out
}

func (s GameState) valid() bool {
	return s.CurrentStage >= 0 && s.ElapsedTime >= 0 && s.HintCount >= 0
}
