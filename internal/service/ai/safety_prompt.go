package ai

// SafetyDirective is appended to the base instruction when the current user
// message trips the risk scanner. It tells the model to prioritize
// empathetic acknowledgment, escalation to a trusted adult and the helpline
// contacts over everything else.
const SafetyDirective = "\n\n[안전모드] 사용자의 메시지에서 위기 징후가 감지됨. 안전 안내를 최우선으로 제공."

// ComposeSystemPrompt returns the effective system instruction for one model
// call. The directive is driven by the current turn's detection only, not
// the session's sticky flag: a risk-free message after a flagged one gets
// the plain persona prompt again.
func ComposeSystemPrompt(base string, riskDetected bool) string {
	if !riskDetected {
		return base
	}
	return base + SafetyDirective
}
