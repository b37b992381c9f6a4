package domain

import "strings"

type Verdict string

const (
	VerdictSafe    Verdict = "Safe"
	VerdictUnsafe  Verdict = "Unsafe"
	VerdictUnknown Verdict = "Unknown"
)

// ParseVerdict reads the verdict token a narrative starts with. Anything other
// than a leading "Safe" or "Unsafe" word yields VerdictUnknown.
func ParseVerdict(text string) Verdict {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return VerdictUnknown
	}

	token := strings.TrimFunc(fields[0], func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	switch strings.ToLower(token) {
	case "safe":
		return VerdictSafe
	case "unsafe":
		return VerdictUnsafe
	default:
		return VerdictUnknown
	}
}
