package chat

import (
	"context"
	"strings"
	"time"

	"github.com/maumlab/counselbot/backend/internal/model/chat"
)

// summaryTurnLimit caps the export at the most recent turns.
const summaryTurnLimit = 30

const (
	labelStudent   = "학생"
	labelCounselor = "상담봇"

	safetyLineClear   = "보고된 범위 내 위험 신호 없음"
	safetyLineFlagged = "⚠️ 추가 보호자/전문기관 연계 필요"
)

// Summary renders the plain-text export for a session: timestamp header,
// the last 30 turns and a trailing safety-status line.
func (s *Service) Summary(ctx context.Context, sessionID string, now time.Time) (string, error) {
	turns, err := s.Transcript(ctx, sessionID, summaryTurnLimit)
	if err != nil {
		return "", err
	}
	flagged, err := s.RiskFlagged(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return BuildSummary(turns, flagged, now), nil
}

// BuildSummary is the pure formatting function behind Summary.
func BuildSummary(turns []chat.Turn, riskFlagged bool, now time.Time) string {
	var b strings.Builder
	b.WriteString("[상담 요약 - ")
	b.WriteString(now.Format("2006-01-02 15:04"))
	b.WriteString("]\n")

	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}

	b.WriteString("\n\n안전 체크: ")
	if riskFlagged {
		b.WriteString(safetyLineFlagged)
	} else {
		b.WriteString(safetyLineClear)
	}
	return b.String()
}

func roleLabel(role chat.Role) string {
	if role == chat.RoleAssistant {
		return labelCounselor
	}
	return labelStudent
}
