package broadcast

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/godlykids/radio-engine/internal/domain"
)

// ErrNoHosts is returned when a broadcast is assembled without any host.
var ErrNoHosts = errors.New("at least one host is required")

// SongRef is one playlist item fed into assembly.
type SongRef struct {
	PlaylistRef domain.PlaylistRef `json:"playlistRef"`
	Info        domain.SongInfo    `json:"info"`
}

// AssembleOptions control timeline assembly.
type AssembleOptions struct {
	// Frequency inserts a host break before every Nth song. The first song
	// always receives a leading break.
	Frequency int
	// RotateHosts cycles the assigned host across successive breaks.
	RotateHosts bool
	// Shuffle permutes the song list before assembly.
	Shuffle bool
	// StartOrder is the order value assigned to the first emitted segment.
	StartOrder int
}

// Assembler interleaves songs and host-break placeholders into an ordered
// segment timeline.
type Assembler struct {
	rng   *rand.Rand
	newID func() string
}

// NewAssembler creates an assembler using the given random source for
// shuffling.
func NewAssembler(rng *rand.Rand) *Assembler {
	return &Assembler{rng: rng, newID: uuid.NewString}
}

// Assemble builds the segment timeline for a station. Host breaks are emitted
// as pending placeholders; song segments are ready immediately with a
// snapshot of their track metadata.
func (a *Assembler) Assemble(stationID string, songs []SongRef, hosts []domain.Host, opts AssembleOptions) ([]domain.Segment, error) {
	roster := activeHosts(hosts)
	if len(roster) == 0 {
		return nil, ErrNoHosts
	}

	if opts.Frequency < 1 {
		opts.Frequency = 1
	}

	ordered := songs
	if opts.Shuffle {
		ordered = make([]SongRef, len(songs))
		copy(ordered, songs)
		a.rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	segments := make([]domain.Segment, 0, len(ordered)*2)
	order := opts.StartOrder
	hostCursor := 0

	for i, song := range ordered {
		if i%opts.Frequency == 0 {
			host := roster[hostCursor%len(roster)]
			if opts.RotateHosts {
				hostCursor++
			}

			breakSegment := domain.Segment{
				ID:        a.newID(),
				StationID: stationID,
				Type:      domain.SegmentTypeHostBreak,
				Order:     order,
				HostID:    host.ID,
				NextTrack: &domain.TrackRef{Title: song.Info.Title, Artist: song.Info.Artist},
				Status:    domain.SegmentStatusPending,
			}
			if i > 0 {
				prev := ordered[i-1].Info
				breakSegment.PreviousTrack = &domain.TrackRef{Title: prev.Title, Artist: prev.Artist}
			}

			segments = append(segments, breakSegment)
			order++
		}

		info := song.Info
		playlistRef := song.PlaylistRef
		segments = append(segments, domain.Segment{
			ID:              a.newID(),
			StationID:       stationID,
			Type:            domain.SegmentTypeSong,
			Order:           order,
			DurationSeconds: info.Duration,
			PlaylistRef:     &playlistRef,
			SongInfo:        &info,
			Status:          domain.SegmentStatusReady,
		})
		order++
	}

	return segments, nil
}

// activeHosts returns the enabled subset of the roster in roster order. When
// no host is enabled but the requested roster is non-empty, all requested
// hosts are auto-enabled rather than aborting the broadcast.
func activeHosts(hosts []domain.Host) []domain.Host {
	enabled := make([]domain.Host, 0, len(hosts))
	for _, h := range hosts {
		if h.Enabled {
			enabled = append(enabled, h)
		}
	}
	if len(enabled) == 0 {
		enabled = append(enabled, hosts...)
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order < enabled[j].Order
	})
	return enabled
}
