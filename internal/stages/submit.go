package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playperu/proxima/internal/answers"
	"github.com/playperu/proxima/internal/storage"
)

// Fixed report values for stage 2.
const (
	reportStarType       = "적색왜성 (Red Dwarf)"
	reportPlanetRotation = "동주기 자전 (Tidal Locking)"
)

// Outcome describes an accepted or rejected stage answer.
type Outcome struct {
	Stage    int                   `json:"stage"`
	Accepted bool                  `json:"accepted"`
	Kind     string                `json:"kind"`
	Message  string                `json:"message"`
	Override bool                  `json:"override,omitempty"`
	Region   *answers.RegionResult `json:"region,omitempty"`
	Success  *bool                 `json:"success,omitempty"`
	Next     int                   `json:"next,omitempty"`
}

// Submit checks the answer for stage. Missing or wrong input returns a
// *Feedback error and changes nothing. A correct answer records the stage
// data and schedules the advance to the next stage.
func (c *Controller) Submit(ctx context.Context, stage int, fields map[string]string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return Outcome{Stage: stage}, err
	}
	if stage != c.stage {
		return Outcome{Stage: stage}, ErrWrongStage
	}
	get := func(name string) string { return strings.TrimSpace(fields[name]) }

	var (
		out     Outcome
		capture storage.Capture
		err     error
	)
	switch stage {
	case 1:
		out, capture, err = c.submitStage1(get("code"))
	case 2:
		out, capture, err = c.submitStage2(get("zone"), get("reason"))
	case 3:
		out, capture, err = c.submitStage3(ctx, get("region"), get("latitude"), get("code"))
	case 4:
		out, capture, err = c.submitStage4(fields)
	default:
		return Outcome{Stage: stage}, ErrInvalidStage
	}
	out.Stage = stage

	var fb *Feedback
	if errors.As(err, &fb) {
		out.Kind = fb.Kind
		out.Message = fb.Message
		c.publishFeedback(stage, fb.Kind, fb.Message)
		c.logger.Info("answer rejected", "stage", stage, "reason", fb.Err)
		return out, err
	}
	if err != nil {
		return out, err
	}

	c.store.Capture(ctx, stageKey(stage), capture)
	out.Accepted = true
	out.Next = stage + 1
	c.publishFeedback(stage, out.Kind, out.Message)
	c.logger.Info("answer accepted", "stage", stage, "override", out.Override)
	c.schedule(ctx, stage+1)
	return out, nil
}

func stageKey(stage int) string {
	return fmt.Sprintf("stage%d", stage)
}

func (c *Controller) submitStage1(code string) (Outcome, storage.Capture, error) {
	if c.check.IsOverride(code) {
		out := Outcome{Kind: KindSuccess, Message: "✓ 마스터 키 승인. 시스템 접속 허가.", Override: true}
		return out, storage.Capture{"securityCode": c.cat.Answers.Stage1}, nil
	}
	if code == "" {
		return Outcome{}, nil, missing("보안 코드를 입력해주세요.")
	}
	if !c.check.Stage1(code) {
		return Outcome{}, nil, incorrect("✗ 보안 코드가 올바르지 않습니다.")
	}
	out := Outcome{Kind: KindSuccess, Message: "✓ 보안 인증 성공! 시스템 접속 허가."}
	return out, storage.Capture{"securityCode": code}, nil
}

func (c *Controller) submitStage2(zone, reason string) (Outcome, storage.Capture, error) {
	if zone == "" {
		return Outcome{}, nil, missing("생존 가능 구역을 입력해주세요.")
	}
	if reason == "" {
		return Outcome{}, nil, missing("선정 이유를 적어주세요.")
	}
	if !c.check.Stage2(zone) {
		return Outcome{}, nil, incorrect("✗ 다시 생각해보세요. 극한 환경 사이의 경계 지역입니다.")
	}
	out := Outcome{
		Kind:     KindSuccess,
		Message:  "✓ 맞습니다! 황혼 지역을 1차 수색 지점으로 설정합니다...",
		Override: c.check.IsOverride(zone),
	}
	return out, storage.Capture{
		"starType":       reportStarType,
		"planetRotation": reportPlanetRotation,
		"survivalZone":   zone,
		"reason":         reason,
	}, nil
}

func (c *Controller) submitStage3(ctx context.Context, region, latitude, code string) (Outcome, storage.Capture, error) {
	override := c.check.IsOverride(latitude) || c.check.IsOverride(code)
	if !override {
		if region == "" {
			return Outcome{}, nil, missing("구역을 선택해주세요.")
		}
		if latitude == "" {
			return Outcome{}, nil, missing("위도를 입력해주세요.")
		}
	}

	res := c.check.Stage3(region, latitude, code)
	if !res.Valid {
		msg := "✗ "
		switch {
		case !res.RegionValid && !res.LatitudeValid:
			msg += "구역과 위도 모두 다시 확인해주세요."
		case !res.RegionValid:
			msg += "별 궤적의 특징을 다시 살펴보세요."
		default:
			msg += "위도 계산을 다시 확인해주세요."
		}
		return Outcome{Region: &res}, nil, incorrect(msg)
	}

	a := c.cat.Answers.Stage3
	angle := a.DefaultAngle + "도"
	if prev := c.store.Load(ctx).StageData["stage3"]["angle"]; prev != "" {
		angle = prev
	}
	if override {
		region, latitude = a.Region, "MASTER"
	}
	out := Outcome{
		Kind:     KindSuccess,
		Message:  "✓ 구조 포인트 생성 완료! 궤도 진입 시퀀스 가동...",
		Override: override,
		Region:   &res,
	}
	return out, storage.Capture{
		"region":   region,
		"latitude": latitude,
		"angle":    angle,
		"speed":    a.RotationSpeed,
		"location": c.cat.RegionLabel(region),
	}, nil
}

func (c *Controller) submitStage4(fields map[string]string) (Outcome, storage.Capture, error) {
	get := func(name string) string { return strings.TrimSpace(fields[name]) }

	res := c.check.Stage4(get("result"), get("angle"), get("time"))
	if !res.Override && get("result") == "" {
		return Outcome{}, nil, missing("미션 결과를 선택해주세요.")
	}
	if !res.Valid {
		return Outcome{}, nil, incorrect("미션 결과를 선택해주세요.")
	}

	capture := storage.Capture{}
	for k, v := range res.Capture {
		capture[k] = v
	}
	for _, f := range []string{"attempt1Result", "attempt1Time", "attempt2Result", "attempt2Time"} {
		capture[f] = get(f)
	}

	success := res.Success
	out := Outcome{Kind: KindSuccess, Override: res.Override, Success: &success}
	if success {
		out.Message = "🎉 축하합니다! 햄스터 로봇이 성공적으로 목표에 도달했습니다!"
	} else {
		out.Kind = KindWarning
		out.Message = "💪 아쉽지만 괜찮아요. 다음에는 꼭 성공할 거예요! 실제 구조 작전을 진행해봅시다."
	}
	return out, capture, nil
}
