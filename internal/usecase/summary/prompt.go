package summary

import (
	"fmt"
	"regexp"
	"strings"
)

const promptTemplate = `You summarize local community help posts.
Town: %s
Recent help posts JSON:
%s

Instructions:
- Write 2-4 sentences in plain English.
- Do not use markdown, headings, bullets, asterisks, or hashtags.
- Focus on common themes and relative frequency.
- Ground your summary only in the provided data.
- If patterns are weak, explicitly say confidence is low.`

func renderPrompt(town string, payload []payloadNotice) (string, error) {
	data, err := marshal(payload, "    ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt payload: %w", err)
	}
	return fmt.Sprintf(promptTemplate, town, data), nil
}

var (
	leadingMarkers = regexp.MustCompile(`(?m)^[#>\-*\s]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	inlineMarkers  = strings.NewReplacer("**", "", "__", "", "`", "")
)

// clean strips markdown the model was told not to produce.
func clean(text string) string {
	text = leadingMarkers.ReplaceAllString(text, "")
	text = inlineMarkers.Replace(text)
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
