package dialogue

import (
	"regexp"
	"strings"

	"github.com/godlykids/radio-engine/internal/domain"
)

// Speaker binds a dialogue participant's name to an assigned voice.
type Speaker struct {
	Name    string
	VoiceID string
}

// ParseDuoScript splits a two-speaker script into speaker-attributed turns.
// Speaker lines are recognized by literal name tokens (full name or first
// name, case-insensitive); text between tokens is attributed to the most
// recently named speaker. An empty result means the script did not follow the
// expected format and the caller must fall back to single-speaker synthesis
// of the raw text.
func ParseDuoScript(script string, speakers [2]Speaker) []domain.DialogueTurn {
	pattern := nameTokenPattern(speakers)
	if pattern == nil {
		return nil
	}

	var turns []domain.DialogueTurn
	currentVoice := ""
	last := 0

	matches := pattern.FindAllStringSubmatchIndex(script, -1)
	for _, m := range matches {
		fragment := cleanFragment(script[last:m[0]])
		if currentVoice != "" && fragment != "" {
			turns = append(turns, domain.DialogueTurn{VoiceID: currentVoice, Text: fragment})
		}

		name := script[m[2]:m[3]]
		currentVoice = voiceForName(name, speakers)
		last = m[1]
	}

	if currentVoice != "" {
		if fragment := cleanFragment(script[last:]); fragment != "" {
			turns = append(turns, domain.DialogueTurn{VoiceID: currentVoice, Text: fragment})
		}
	}

	return turns
}

// nameTokenPattern builds a case-insensitive alternation over each speaker's
// full name and first-name alias, longest alternatives first.
func nameTokenPattern(speakers [2]Speaker) *regexp.Regexp {
	var alternatives []string
	for _, s := range speakers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		alternatives = append(alternatives, regexp.QuoteMeta(name))
		if first := firstName(name); first != name {
			alternatives = append(alternatives, regexp.QuoteMeta(first))
		}
	}
	if len(alternatives) == 0 {
		return nil
	}

	// Longer alternatives first so "Joy Miller" wins over "Joy"
	for i := 0; i < len(alternatives); i++ {
		for j := i + 1; j < len(alternatives); j++ {
			if len(alternatives[j]) > len(alternatives[i]) {
				alternatives[i], alternatives[j] = alternatives[j], alternatives[i]
			}
		}
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(alternatives, "|") + `)\b\s*:?`)
}

func firstName(name string) string {
	if idx := strings.IndexByte(name, ' '); idx > 0 {
		return name[:idx]
	}
	return name
}

func voiceForName(name string, speakers [2]Speaker) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, s := range speakers {
		if lower == strings.ToLower(s.Name) || lower == strings.ToLower(firstName(s.Name)) {
			return s.VoiceID
		}
	}
	return ""
}

func cleanFragment(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	fragment = strings.Trim(fragment, ":-")
	return strings.TrimSpace(fragment)
}
