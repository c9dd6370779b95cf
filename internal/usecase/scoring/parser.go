package scoring

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/remedex/internal/domain/solution"
)

// defaultReason is used when a whitespace-delimited line carries no rationale.
const defaultReason = "Selected by LLM"

// Parse extracts selections from a raw LLM response. Each line is either
// "index | confidence | reason" or "index confidence reason". Blank, malformed and
// non-numeric lines are dropped; a bare "none" (any case) yields no selections.
// Confidences outside [0, 1] are treated as malformed. Parse never fails.
func Parse(response string) []solution.Selection {
	response = strings.TrimSpace(response)
	if strings.EqualFold(response, "none") {
		return nil
	}

	var out []solution.Selection
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sel, ok := parseLine(line)
		if ok {
			out = append(out, sel)
		}
	}
	return out
}

func parseLine(line string) (solution.Selection, bool) {
	var idxTok, confTok, reason string
	if strings.Contains(line, "|") {
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			return solution.Selection{}, false
		}
		idxTok = strings.TrimSpace(parts[0])
		confTok = strings.TrimSpace(parts[1])
		if len(parts) > 2 {
			reason = strings.TrimSpace(parts[2])
		}
	} else {
		var rest string
		idxTok, rest = cutWord(line)
		confTok, reason = cutWord(rest)
		if reason == "" {
			reason = defaultReason
		}
	}

	if !isDigits(idxTok) {
		return solution.Selection{}, false
	}
	idx, err := strconv.Atoi(idxTok)
	if err != nil {
		return solution.Selection{}, false
	}
	conf, err := strconv.ParseFloat(confTok, 64)
	if err != nil || math.IsNaN(conf) || conf < 0 || conf > 1 {
		return solution.Selection{}, false
	}
	return solution.Selection{LocalIndex: idx, Confidence: conf, Reason: reason}, true
}

// cutWord splits s at the first whitespace run.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
