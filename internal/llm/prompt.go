package llm

import (
	"fmt"
	"strings"

	"github.com/ayane-k/soracast/internal/models"
)

// BuildRefinePrompt renders the refinement prompt for a selected comment.
// Every snapshot period goes into the prompt, not just the base one, so the
// model sees rain that only appears later in the day.
func BuildRefinePrompt(comment string, snap *models.Snapshot, tr models.Trend) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "地点: %s\n", snap.Location)
	fmt.Fprintf(&sb, "対象日: %s\n", snap.Date.Format("2006-01-02"))
	sb.WriteString("時間帯ごとの予報:\n")
	for _, p := range snap.Periods {
		fmt.Fprintf(&sb, "- %s: %s 気温%.1f°C 降水%.1fmm/h 風%.1fm/s 湿度%d%%\n",
			p.Timestamp.Format("15:04"), conditionJa(p.Condition),
			p.TemperatureC, p.PrecipMMPerH, p.WindSpeedMS, p.HumidityPct)
	}
	fmt.Fprintf(&sb, "卓越天気: %s / 日較差%.1f°C / 最大降水%.1fmm/h\n",
		conditionJa(tr.Dominant), tr.DailyTempDelta, tr.MaxPrecipitation)
	fmt.Fprintf(&sb, "\n元のコメント: %s\n", comment)
	sb.WriteString("このコメントを予報と矛盾しない範囲で自然に整えてください。")
	return sb.String()
}

func conditionJa(c models.Condition) string {
	switch c {
	case models.ConditionSunny:
		return "晴れ"
	case models.ConditionCloudy:
		return "くもり"
	case models.ConditionRainy:
		return "雨"
	case models.ConditionSnowy:
		return "雪"
	case models.ConditionStormy:
		return "荒天"
	case models.ConditionFoggy:
		return "霧"
	default:
		return "不明"
	}
}
