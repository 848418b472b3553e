package google

import "strings"

// thinkingLevelModelPrefixes lists the gemini-3+ model family prefixes that
// take a named ThinkingLevel instead of a token ThinkingBudget (§4.2.5).
var thinkingLevelModelPrefixes = []string{"gemini-3", "gemini-exp-3"}

func usesThinkingLevel(model string) bool {
	m := strings.ToLower(model)

	for _, p := range thinkingLevelModelPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}

	return false
}

// effortToThinkingLevel maps the universal reasoning effort string onto
// Gemini's named thinking levels.
func effortToThinkingLevel(effort string) string {
	switch effort {
	case "minimal":
		return "MINIMAL"
	case "low":
		return "LOW"
	case "medium":
		return "MEDIUM"
	case "high":
		return "HIGH"
	default:
		return "UNSPECIFIED"
	}
}

// thinkingLevelToEffort maps Gemini's named thinking levels back onto the
// universal reasoning effort domain ("low"|"medium"|"high"|""). Minimal has
// no universal equivalent, so it approximates to Low; Unspecified defaults
// to High, Google's documented default.
func thinkingLevelToEffort(level string) string {
	switch level {
	case "MINIMAL":
		return "low"
	case "LOW":
		return "low"
	case "MEDIUM":
		return "medium"
	case "HIGH":
		return "high"
	default:
		return "high"
	}
}

// defaultThinkingBudget is used for gemini-2.x models and any unrecognized
// model family when a reasoning effort is requested but no explicit token
// budget was given.
const defaultThinkingBudget = 8192

// effortToThinkingBudget gives gemini-2.x models a coarse token budget per
// effort level, mirroring the teacher's fixed-step heuristic for
// provider-specific knobs that have no universal equivalent.
func effortToThinkingBudget(effort string) int {
	switch effort {
	case "minimal":
		return 0
	case "low":
		return 2048
	case "medium":
		return 8192
	case "high":
		return 24576
	default:
		return defaultThinkingBudget
	}
}
