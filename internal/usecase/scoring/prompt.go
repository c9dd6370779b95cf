package scoring

import (
	"fmt"
	"strings"
)

const promptTemplate = `Issue: %s

Available Solutions:
%s

Return the most relevant solution indices as integers, one per line along with confidence score and reason. If no solution is relevant, return "None".

Examples:
0 0.9 Docker image not found - Image missing in registry
1 0.7 Container startup issue - Insufficient memory allocated

Your response:`

// BuildPrompt renders the relevance prompt for one chunk. Candidates are listed
// with their chunk-local index and normalized index text.
func BuildPrompt(issue string, c Chunk) string {
	var b strings.Builder
	for i, cand := range c.Candidates {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "(%d, %q)", i, cand.Entry().IndexText())
	}
	return fmt.Sprintf(promptTemplate, issue, b.String())
}
