package risk

import "strings"

// Keywords is the fixed crisis-signal list: self-harm, violence, threats,
// bullying and hopelessness terms. Matching is an exact substring check, so
// stems like "죽고싶" also catch "죽고싶어요".
var Keywords = []string{
	"죽고", "죽고싶", "자해", "극단", "해치", "살고싶지", "사라지고", "숨고싶",
	"계속 때려", "협박", "위협", "따돌", "왕따",
}

// Detect reports whether the text contains any crisis keyword. It is a
// deliberately coarse heuristic: no negation handling, no context window.
// Empty text never matches.
func Detect(text string) bool {
	if text == "" {
		return false
	}
	for _, keyword := range Keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
