package pipelinelog

import (
	"regexp"
	"strings"
)

// pipelinePatterns are tried in order; the first match wins.
var pipelinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https://\S*jenkins\S*`),
	regexp.MustCompile(`(?i)https://\S*gitlab\S*/pipelines/\S*`),
	regexp.MustCompile(`(?i)https://\S*/job/\S*`),
	regexp.MustCompile(`(?i)https://\S*/build/\S*`),
	regexp.MustCompile(`(?i)https://\S*/console\S*`),
}

var genericURL = regexp.MustCompile(`https://\S+`)

var pipelineKeywords = []string{"jenkins", "gitlab", "build", "pipeline", "job", "console"}

var errorKeywords = []string{
	"error", "failed", "exception", "traceback", "build failed",
	"timeout", "abort", "crash", "fatal", "critical",
}

// DetectURL returns the first CI/CD URL found in input.
func DetectURL(input string) (string, bool) {
	for _, p := range pipelinePatterns {
		if m := p.FindString(input); m != "" {
			return m, true
		}
	}

	u := genericURL.FindString(input)
	if u == "" {
		return "", false
	}
	lower := strings.ToLower(u)
	for _, kw := range pipelineKeywords {
		if strings.Contains(lower, kw) {
			return u, true
		}
	}
	return "", false
}

// ConsoleURL points url at the plain-text console endpoint.
func ConsoleURL(url string) string {
	switch {
	case strings.HasSuffix(url, "/consoleText"):
		return url
	case strings.HasSuffix(url, "/"):
		return url + "consoleText"
	default:
		return url + "/consoleText"
	}
}

// FilterErrorLines keeps trimmed lines mentioning an error keyword, at most the last maxLines.
func FilterErrorLines(console string, maxLines int) []string {
	var out []string
	for _, line := range strings.Split(console, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range errorKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
	}
	if maxLines > 0 && len(out) > maxLines {
		out = out[len(out)-maxLines:]
	}
	return out
}
