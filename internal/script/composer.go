package script

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/godlykids/radio-engine/internal/domain"
)

// WordsPerSecond is the speaking rate used to size scripts and to derive a
// host break's duration from its generated word count.
const WordsPerSecond = 2.5

const (
	defaultMaxOutputTokens = 512
	defaultTemperature     = 0.9
)

// TextGenerator is the generative text backend used by the composer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Composer builds host break scripts. Compose never fails: when the text
// backend is unavailable it falls back to a static per-content-type template.
type Composer struct {
	generator TextGenerator
}

// NewComposer creates a composer backed by the given text generator. A nil
// generator is allowed and forces the static fallback path.
func NewComposer(generator TextGenerator) *Composer {
	return &Composer{generator: generator}
}

// WordTarget converts a target duration to a word count at the fixed rate.
func WordTarget(targetDurationSeconds float64) int {
	return int(math.Round(targetDurationSeconds * WordsPerSecond))
}

// DurationForScript derives a host break duration from its word count.
func DurationForScript(text string) float64 {
	return float64(len(strings.Fields(text))) / WordsPerSecond
}

// Compose returns a script for the request. It always returns non-empty text.
func (c *Composer) Compose(ctx context.Context, req *domain.HostBreakRequest) string {
	var prompt string
	if req.IsDuo && req.CoHost != nil {
		prompt = c.buildDuoPrompt(req)
	} else {
		prompt = c.buildPrompt(req)
	}

	if c.generator == nil {
		return fallbackScript(req)
	}

	text, err := c.generator.Generate(ctx, prompt, defaultMaxOutputTokens, defaultTemperature)
	if err != nil {
		slog.Warn("script generation failed, using fallback", "contentType", req.ContentType, "error", err)
		return fallbackScript(req)
	}

	text = Sanitize(text)
	if text == "" {
		return fallbackScript(req)
	}

	return text
}

// buildPrompt assembles the single-host prompt for a request.
func (c *Composer) buildPrompt(req *domain.HostBreakRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a warm and energetic radio host on a Christian kids radio station.", req.Host.Name)
	if req.Host.Personality != "" {
		fmt.Fprintf(&b, " Your personality: %s.", req.Host.Personality)
	}
	fmt.Fprintf(&b, "\nWrite a spoken radio segment of about %d words.\n", WordTarget(req.TargetDurationSeconds))

	b.WriteString(instructionsFor(req))
	b.WriteString(commonRules)

	return b.String()
}

// buildDuoPrompt assembles the two-host dialogue prompt for a request.
func (c *Composer) buildDuoPrompt(req *domain.HostBreakRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a radio dialogue between two hosts on a Christian kids radio station: %s and %s.",
		req.Host.Name, req.CoHost.Name)
	if req.Host.Personality != "" {
		fmt.Fprintf(&b, " %s's personality: %s.", req.Host.Name, req.Host.Personality)
	}
	if req.CoHost.Personality != "" {
		fmt.Fprintf(&b, " %s's personality: %s.", req.CoHost.Name, req.CoHost.Personality)
	}
	fmt.Fprintf(&b, "\nThe dialogue should total about %d words.\n", WordTarget(req.TargetDurationSeconds))

	b.WriteString(instructionsFor(req))

	b.WriteString("\nFormat every line strictly as \"Name: utterance\", for example:\n")
	fmt.Fprintf(&b, "%s: Hey friends, that song always makes me smile!\n", req.Host.Name)
	fmt.Fprintf(&b, "%s: [laughing] Me too! And wait until you hear what's next.\n", req.CoHost.Name)

	if req.ContentType != domain.ContentTypeStationIntro {
		b.WriteString("Neither host may introduce themselves by name.\n")
	}
	b.WriteString(commonRules)

	return b.String()
}

// commonRules apply to every content type.
const commonRules = `
You may include emotional cues in square brackets like [excited] or [warmly]; they are read by the voice engine, not spoken.
Do not use stage directions in asterisks or parentheses.
Output only the spoken words.
`

// instructionsFor returns the content-type-specific section of the prompt.
func instructionsFor(req *domain.HostBreakRequest) string {
	var b strings.Builder

	switch req.ContentType {
	case domain.ContentTypeStationIntro:
		b.WriteString("This is the station introduction, the very first thing a listener hears when tuning in.\n")
		b.WriteString("Introduce yourself by name, welcome listeners to the station, and tease the first song coming up")
		if req.NextTrack.Title != "" {
			fmt.Fprintf(&b, ", \"%s\"", req.NextTrack.Title)
		}
		b.WriteString(".\n")
		if req.ContentDescription != "" {
			fmt.Fprintf(&b, "Station notes: %s\n", req.ContentDescription)
		}
	case domain.ContentTypeStoryIntro:
		fmt.Fprintf(&b, "Introduce an upcoming story segment. Story details: %s\n", req.ContentDescription)
	case domain.ContentTypeStoryOutro:
		fmt.Fprintf(&b, "Wrap up the story segment that just finished. Story details: %s\n", req.ContentDescription)
		if req.NextTrack.Title != "" {
			fmt.Fprintf(&b, "Then lead into the next song, \"%s\".\n", req.NextTrack.Title)
		}
	case domain.ContentTypeDevotional:
		b.WriteString("Share a short, gentle devotional thought for kids.\n")
		if req.ContentDescription != "" {
			fmt.Fprintf(&b, "Theme: %s\n", req.ContentDescription)
		}
	case domain.ContentTypeDevotionalSegment:
		fmt.Fprintf(&b, "Introduce a devotional segment. Details: %s\n", req.ContentDescription)
	default:
		// song transition
		if req.PreviousTrack != nil && req.PreviousTrack.Title != "" {
			fmt.Fprintf(&b, "The song \"%s\" just finished playing.\n", req.PreviousTrack.Title)
		}
		if req.NextTrack.Title != "" {
			fmt.Fprintf(&b, "Transition into the next song, \"%s\".\n", req.NextTrack.Title)
		}
	}

	if req.ContentType != domain.ContentTypeStationIntro {
		b.WriteString("Do not introduce yourself by name. Do not mention artist names. ")
		b.WriteString("Do not use relative time references such as \"yesterday\" or \"last week\".\n")
	}

	return b.String()
}

var (
	stageDirectionRe = regexp.MustCompile(`\*[^*]*\*`)
	parentheticalRe  = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// Sanitize cleans raw model output for synthesis. Stage directions and
// parentheticals are removed; bracketed emotional cues are kept verbatim
// because the speech backend understands them.
func Sanitize(text string) string {
	text = stageDirectionRe.ReplaceAllString(text, " ")
	text = parentheticalRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// fallbackScript builds a deterministic static script when the text backend is
// unavailable. It always produces non-empty text.
func fallbackScript(req *domain.HostBreakRequest) string {
	hostName := "your host"
	if req.Host != nil {
		hostName = req.Host.Name
	}
	title := req.NextTrack.Title
	if title == "" {
		title = "another great song"
	}

	switch req.ContentType {
	case domain.ContentTypeStationIntro:
		return fmt.Sprintf("Hey friends, welcome to the station! I'm %s, and I'm so glad you're here. We've got amazing music lined up for you, starting with %s. Let's go!", hostName, title)
	case domain.ContentTypeStoryIntro:
		return "Alright everyone, settle in, because it's story time! You're going to love this one."
	case domain.ContentTypeStoryOutro:
		return fmt.Sprintf("Wasn't that a great story? Now let's get back to the music with %s.", title)
	case domain.ContentTypeDevotional:
		return "Here's a little thought to carry with you today: you are loved, you are special, and every day is a gift. Keep shining!"
	case domain.ContentTypeDevotionalSegment:
		return "Let's take a quiet moment together for today's devotional."
	default:
		return fmt.Sprintf("That was wonderful! Coming up next, here's %s. Keep it right here!", title)
	}
}
