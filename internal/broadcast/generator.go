package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/godlykids/radio-engine/internal/cache"
	"github.com/godlykids/radio-engine/internal/dialogue"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/script"
	"github.com/godlykids/radio-engine/internal/speech"
)

// ErrMissingHost is returned when a generation request names no host.
var ErrMissingHost = errors.New("host break request requires a host")

// Generator runs the full host-break pipeline for one request: script
// composition, optional dialogue parsing, tiered speech synthesis and storage.
// Each call executes synchronously end to end.
type Generator struct {
	composer *script.Composer
	synth    *speech.Synthesizer
	intros   *cache.IntroCache
	now      func() time.Time
}

// NewGenerator wires the pipeline stages together.
func NewGenerator(composer *script.Composer, synth *speech.Synthesizer, intros *cache.IntroCache) *Generator {
	return &Generator{
		composer: composer,
		synth:    synth,
		intros:   intros,
		now:      time.Now,
	}
}

// Generate produces one host break. Station intros go through the single-slot
// cache; everything else is generated fresh. The returned AudioURL is empty
// when both synthesis tiers failed, which callers treat as a script-only
// segment rather than an error.
func (g *Generator) Generate(ctx context.Context, stationID string, req *domain.HostBreakRequest, forceRegenerate bool) (*domain.HostBreakResult, error) {
	if req.Host == nil {
		return nil, ErrMissingHost
	}

	if req.ContentType == domain.ContentTypeStationIntro {
		intro, err := g.intros.GetOrGenerate(stationID, forceRegenerate, func() (*domain.CachedIntro, error) {
			result, genErr := g.generate(ctx, req)
			if genErr != nil {
				return nil, genErr
			}
			return &domain.CachedIntro{
				AudioURL:    result.AudioURL,
				Script:      result.Script,
				HostID:      result.HostID,
				HostName:    result.HostName,
				GeneratedAt: g.now(),
			}, nil
		})
		if err != nil {
			return nil, err
		}
		return &domain.HostBreakResult{
			Script:   intro.Script,
			AudioURL: intro.AudioURL,
			HostID:   intro.HostID,
			HostName: intro.HostName,
			Duration: script.DurationForScript(intro.Script),
		}, nil
	}

	return g.generate(ctx, req)
}

// InvalidateIntro clears the station's cached intro. Called whenever the
// station's custom intro script field changes.
func (g *Generator) InvalidateIntro(stationID string) {
	g.intros.Invalidate(stationID)
}

func (g *Generator) generate(ctx context.Context, req *domain.HostBreakRequest) (*domain.HostBreakResult, error) {
	text := g.composer.Compose(ctx, req)

	var audioURL string
	var err error

	if req.IsDuo && req.CoHost != nil {
		audioURL, err = g.synthesizeDuo(ctx, text, req)
	} else {
		audioURL, err = g.synth.Synthesize(ctx, text, req.Host.Voice)
	}
	if err != nil {
		return nil, err
	}

	if audioURL == "" {
		slog.Info("host break generated without audio", "contentType", req.ContentType, "host", req.Host.Name)
	}

	return &domain.HostBreakResult{
		Script:   text,
		AudioURL: audioURL,
		HostID:   req.Host.ID,
		HostName: req.Host.Name,
		Duration: script.DurationForScript(text),
	}, nil
}

// synthesizeDuo parses the dialogue into speaker turns and issues one
// multi-speaker call. An unparseable script degrades to single-speaker
// synthesis of the full raw text under the primary host's voice.
func (g *Generator) synthesizeDuo(ctx context.Context, text string, req *domain.HostBreakRequest) (string, error) {
	picker := g.synth.Voices()
	primaryVoice := picker.Pick(req.Host.Voice)
	coVoice := picker.PickDistinct(req.CoHost.Voice, primaryVoice)

	turns := dialogue.ParseDuoScript(text, [2]dialogue.Speaker{
		{Name: req.Host.Name, VoiceID: primaryVoice},
		{Name: req.CoHost.Name, VoiceID: coVoice},
	})
	if len(turns) == 0 {
		slog.Warn("duo script was unparseable, falling back to single speaker", "host", req.Host.Name, "coHost", req.CoHost.Name)
		return g.synth.Synthesize(ctx, text, req.Host.Voice)
	}

	return g.synth.SynthesizeDuo(ctx, turns, text, req.Host.Voice)
}
