package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

// ExtractJSON decodes the JSON object embedded in a model reply into dst.
// Code fences are dropped, then the span from the first '{' to the last '}'
// is tried, then the whole text.
func ExtractJSON(text string, dst any) bool {
	txt := strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(text), ""))
	if txt == "" {
		return false
	}
	start := strings.Index(txt, "{")
	end := strings.LastIndex(txt, "}")
	if start != -1 && end > start {
		if json.Unmarshal([]byte(txt[start:end+1]), dst) == nil {
			return true
		}
	}
	return json.Unmarshal([]byte(txt), dst) == nil
}
