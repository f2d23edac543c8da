package practice

import (
	"regexp"
	"strconv"
)

// Requirement is the numeric target a drill's achievement text specifies,
// together with the text it was parsed from.
type Requirement struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

var firstIntRegex = regexp.MustCompile(`\d+`)

// ParseRequirement extracts the first decimal integer substring from an
// achievement text ("Make 5 out of 8 putts" -> 5). When the text carries no
// digits the defaultCount is used.
func ParseRequirement(text string, defaultCount int) Requirement {
	req := Requirement{Count: defaultCount, Text: text}
	if m := firstIntRegex.FindString(text); m != "" {
		if count, err := strconv.Atoi(m); err == nil {
			req.Count = count
		}
	}
	return req
}
