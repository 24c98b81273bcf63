package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/godlykids/radio-engine/config"
	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/cache"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/script"
	"github.com/godlykids/radio-engine/internal/segments"
	"github.com/godlykids/radio-engine/internal/speech"
	"github.com/godlykids/radio-engine/internal/storage"
)

// broadcastPlan is the YAML input describing one station's lineup.
type broadcastPlan struct {
	StationID string     `yaml:"station_id"`
	Hosts     []planHost `yaml:"hosts"`
	Songs     []planSong `yaml:"songs"`
	Frequency int        `yaml:"break_frequency"`
}

type planHost struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Personality string `yaml:"personality"`
	Gender      string `yaml:"gender"`
	VoiceID     string `yaml:"voice_id"`
	Enabled     bool   `yaml:"enabled"`
	Order       int    `yaml:"order"`
}

type planSong struct {
	PlaylistID string  `yaml:"playlist_id"`
	ItemIndex  int     `yaml:"item_index"`
	Title      string  `yaml:"title"`
	Artist     string  `yaml:"artist"`
	AudioURL   string  `yaml:"audio_url"`
	CoverURL   string  `yaml:"cover_url"`
	Duration   float64 `yaml:"duration"`
}

func main() {
	planPath := flag.String("plan", "", "Path to the broadcast plan YAML (required)")
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	generate := flag.Bool("generate", false, "Synthesize audio for the assembled host breaks")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *planPath == "" {
		log.Fatal("Missing required flag: -plan")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	plan, err := loadPlan(*planPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	store, err := segments.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	frequency := plan.Frequency
	if frequency < 1 {
		frequency = cfg.Broadcast.BreakFrequency
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	assembler := broadcast.NewAssembler(rng)

	startOrder, err := store.NextOrder(ctx, plan.StationID)
	if err != nil {
		log.Fatal(err)
	}

	timeline, err := assembler.Assemble(plan.StationID, planSongs(plan.Songs), planHosts(plan.Hosts), broadcast.AssembleOptions{
		Frequency:   frequency,
		RotateHosts: cfg.Broadcast.RotateHosts,
		Shuffle:     cfg.Broadcast.Shuffle,
		StartOrder:  startOrder,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := store.Insert(ctx, timeline); err != nil {
		log.Fatal(err)
	}

	breaks := 0
	for _, seg := range timeline {
		if seg.Type == domain.SegmentTypeHostBreak {
			breaks++
		}
	}
	fmt.Printf("Assembled %d segments (%d host breaks) for station %s\n", len(timeline), breaks, plan.StationID)

	if !*generate || breaks == 0 {
		return
	}

	if err := generateBreaks(ctx, cfg, store, timeline, plan.Hosts, breaks); err != nil {
		log.Fatal(err)
	}
}

func loadPlan(path string) (*broadcastPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan broadcastPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if plan.StationID == "" {
		return nil, fmt.Errorf("plan is missing station_id")
	}
	if len(plan.Songs) == 0 {
		return nil, fmt.Errorf("plan has no songs")
	}
	return &plan, nil
}

func planHosts(hosts []planHost) []domain.Host {
	out := make([]domain.Host, len(hosts))
	for i, h := range hosts {
		out[i] = domain.Host{
			ID:          h.ID,
			Name:        h.Name,
			Personality: h.Personality,
			Gender:      h.Gender,
			Enabled:     h.Enabled,
			Order:       h.Order,
			Voice: domain.VoiceProfile{
				SpeakerID:       h.ID,
				Gender:          h.Gender,
				ExplicitVoiceID: h.VoiceID,
			},
		}
	}
	return out
}

func planSongs(songs []planSong) []broadcast.SongRef {
	out := make([]broadcast.SongRef, len(songs))
	for i, s := range songs {
		out[i] = broadcast.SongRef{
			PlaylistRef: domain.PlaylistRef{PlaylistID: s.PlaylistID, ItemIndex: s.ItemIndex},
			Info: domain.SongInfo{
				Title:    s.Title,
				Artist:   s.Artist,
				AudioURL: s.AudioURL,
				CoverURL: s.CoverURL,
				Duration: s.Duration,
			},
		}
	}
	return out
}

// generateBreaks runs the script and speech pipeline over every pending host
// break in the assembled timeline.
func generateBreaks(ctx context.Context, cfg *config.Config, store *segments.Store, timeline []domain.Segment, hosts []planHost, total int) error {
	var audioStore storage.AudioStore
	switch cfg.Storage.Type {
	case "memory":
		audioStore = storage.NewMemoryStore()
	default:
		gcs, err := storage.NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix,
			cfg.Storage.PublicBaseURL, cfg.Storage.CredentialsFile)
		if err != nil {
			return err
		}
		defer gcs.Close()
		audioStore = gcs
	}

	var tier1 speech.Tier1Backend
	if cfg.Generator.SpeechCredentialsFile != "" {
		gemini, err := speech.NewGeminiTTSClient(ctx, cfg.Generator.SpeechCredentialsFile, cfg.Generator.SpeechModel)
		if err != nil {
			return err
		}
		tier1 = gemini
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	synth := speech.NewSynthesizer(tier1, speech.NewCloudTTSClient(), audioStore, speech.NewVoicePicker(rng))
	generator := broadcast.NewGenerator(script.NewComposer(script.NewGeminiClient(cfg.Generator.TextModel)), synth, cache.NewIntroCache())

	roster := planHosts(hosts)
	byID := make(map[string]*domain.Host, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}

	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Generating host breaks...[reset]"),
	)

	for _, seg := range timeline {
		if seg.Type != domain.SegmentTypeHostBreak {
			continue
		}

		host := byID[seg.HostID]
		if host == nil {
			return fmt.Errorf("segment %s references unknown host %s", seg.ID, seg.HostID)
		}

		req := &domain.HostBreakRequest{
			ContentType:           domain.ContentTypeSong,
			TargetDurationSeconds: 20,
			IsDuo:                 false,
			Host:                  host,
		}
		if seg.NextTrack != nil {
			req.NextTrack = *seg.NextTrack
		}
		req.PreviousTrack = seg.PreviousTrack

		result, err := generator.Generate(ctx, seg.StationID, req, false)
		if err != nil {
			return fmt.Errorf("generation failed for segment %s: %w", seg.ID, err)
		}

		status := domain.SegmentStatusReady
		update := segments.Update{
			ScriptText:      &result.Script,
			Status:          &status,
			DurationSeconds: &result.Duration,
		}
		if result.AudioURL != "" {
			update.AudioURL = &result.AudioURL
		}
		if err := store.Update(ctx, seg.ID, update); err != nil {
			return err
		}

		bar.Add(1)
	}

	fmt.Println()
	return nil
}
