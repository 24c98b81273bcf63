package domain

// Segment types
const (
	SegmentTypeHostBreak = "host_break"
	SegmentTypeSong      = "song"
	SegmentTypeJingle    = "jingle"
)

// Segment statuses
const (
	SegmentStatusPending    = "pending"
	SegmentStatusGenerating = "generating"
	SegmentStatusReady      = "ready"
	SegmentStatusError      = "error"
)

// Host break content types
const (
	ContentTypeSong              = "song"
	ContentTypeStationIntro      = "station_intro"
	ContentTypeStoryIntro        = "story_intro"
	ContentTypeStoryOutro        = "story_outro"
	ContentTypeDevotional        = "devotional"
	ContentTypeDevotionalSegment = "devotional_segment"
)

// TrackRef identifies a track adjacent to a host break.
type TrackRef struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SongInfo is a snapshot of track metadata cached on a song segment so the
// record stays valid even if the source playlist changes.
type SongInfo struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	CoverURL string  `json:"coverUrl,omitempty"`
	AudioURL string  `json:"audioUrl,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// PlaylistRef points back at the playlist item a song segment was built from.
type PlaylistRef struct {
	PlaylistID string `json:"playlistId"`
	ItemIndex  int    `json:"itemIndex"`
}

// Segment is one ordered unit of the broadcast timeline.
type Segment struct {
	ID              string       `json:"id"`
	StationID       string       `json:"stationId"`
	Type            string       `json:"type"`
	Order           int          `json:"order"`
	HostID          string       `json:"hostId,omitempty"`
	ScriptText      string       `json:"scriptText,omitempty"`
	AudioURL        string       `json:"audioUrl,omitempty"`
	DurationSeconds float64      `json:"durationSeconds"`
	PlaylistRef     *PlaylistRef `json:"playlistRef,omitempty"`
	SongInfo        *SongInfo    `json:"songInfo,omitempty"`
	NextTrack       *TrackRef    `json:"nextTrack,omitempty"`
	PreviousTrack   *TrackRef    `json:"previousTrack,omitempty"`
	Status          string       `json:"status"`
	ErrorMessage    string       `json:"errorMessage,omitempty"`
}

// HostBreakRequest describes one host break to generate. It is transient and
// never persisted.
type HostBreakRequest struct {
	ContentType           string    `json:"contentType"`
	TargetDurationSeconds float64   `json:"targetDurationSeconds"`
	ContentDescription    string    `json:"contentDescription,omitempty"`
	NextTrack             TrackRef  `json:"nextTrack"`
	PreviousTrack         *TrackRef `json:"previousTrack,omitempty"`
	IsDuo                 bool      `json:"isDuo"`
	Host                  *Host     `json:"host"`
	CoHost                *Host     `json:"coHost,omitempty"`
}

// HostBreakResult is the outcome of a generation call. AudioURL may be empty
// when both synthesis tiers failed; the script is still usable on its own.
type HostBreakResult struct {
	Script   string  `json:"script"`
	AudioURL string  `json:"audioUrl,omitempty"`
	HostID   string  `json:"hostId"`
	HostName string  `json:"hostName"`
	Duration float64 `json:"duration"`
}

// DialogueTurn is a single speaker-attributed utterance in a duo script.
type DialogueTurn struct {
	VoiceID string `json:"voiceId"`
	Text    string `json:"text"`
}
