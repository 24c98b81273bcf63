package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godlykids/radio-engine/config"
	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/cache"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/script"
	"github.com/godlykids/radio-engine/internal/segments"
	"github.com/godlykids/radio-engine/internal/speech"
	"github.com/godlykids/radio-engine/internal/storage"
)

type fixedTier1 struct{}

func (fixedTier1) Synthesize(_ context.Context, _, _ string) ([]byte, string, error) {
	return []byte("mp3-bytes"), "audio/mpeg", nil
}

func (fixedTier1) SynthesizeMultiSpeaker(_ context.Context, _ string, _ []speech.SpeakerVoice) ([]byte, string, error) {
	return []byte("mp3-bytes"), "audio/mpeg", nil
}

type fixedTextGen struct {
	text string
}

func (f fixedTextGen) Generate(_ context.Context, _ string, _ int, _ float64) (string, error) {
	if f.text == "" {
		return "", errors.New("text backend down")
	}
	return f.text, nil
}

func newTestServer(t *testing.T) (*Server, *segments.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := segments.Open(context.Background(), filepath.Join(t.TempDir(), "segments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Broadcast: config.BroadcastConfig{BreakFrequency: 3},
	}

	synth := speech.NewSynthesizer(fixedTier1{}, nil, storage.NewMemoryStore(),
		speech.NewVoicePicker(rand.New(rand.NewSource(7))))
	generator := broadcast.NewGenerator(
		script.NewComposer(fixedTextGen{text: "Welcome back, friends! Up next is a wonderful song."}),
		synth, cache.NewIntroCache())

	assembler := broadcast.NewAssembler(rand.New(rand.NewSource(7)))

	return New(cfg, store, assembler, generator), store
}

func doJSON(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func testHosts() []domain.Host {
	return []domain.Host{
		{ID: "h1", Name: "Joy Miller", Gender: domain.GenderFemale, Enabled: true,
			Voice: domain.VoiceProfile{SpeakerID: "h1", Gender: domain.GenderFemale}},
		{ID: "h2", Name: "Sam Brooks", Gender: domain.GenderMale, Enabled: true, Order: 1,
			Voice: domain.VoiceProfile{SpeakerID: "h2", Gender: domain.GenderMale}},
	}
}

func testSongs(n int) []broadcast.SongRef {
	songs := make([]broadcast.SongRef, n)
	for i := range songs {
		songs[i] = broadcast.SongRef{
			PlaylistRef: domain.PlaylistRef{PlaylistID: "pl-1", ItemIndex: i},
			Info:        domain.SongInfo{Title: fmt.Sprintf("Song %d", i+1), Artist: "The Bright Band"},
		}
	}
	return songs
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAssembleBroadcast(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/segments/assemble", AssembleRequest{
		Songs: testSongs(4),
		Hosts: testHosts(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	listed, err := store.ListByStation(context.Background(), "station-1")
	require.NoError(t, err)
	// 4 songs at frequency 3 produce breaks before songs 1 and 4
	require.Len(t, listed, 6)
	assert.Equal(t, domain.SegmentTypeHostBreak, listed[0].Type)
	assert.Equal(t, domain.SegmentStatusPending, listed[0].Status)
	assert.Equal(t, domain.SegmentTypeSong, listed[1].Type)
	assert.Equal(t, domain.SegmentStatusReady, listed[1].Status)
}

func TestAssembleBroadcastAppendsAfterExisting(t *testing.T) {
	s, store := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/segments/assemble", AssembleRequest{
		Songs: testSongs(2),
		Hosts: testHosts(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(s, "POST", "/api/v1/stations/station-1/segments/assemble", AssembleRequest{
		Songs: testSongs(1),
		Hosts: testHosts(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	listed, err := store.ListByStation(context.Background(), "station-1")
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for i, seg := range listed {
		assert.Equal(t, i, seg.Order)
	}
}

func TestAssembleBroadcastRequiresBody(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/segments/assemble", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSegmentsEmptyStation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "GET", "/api/v1/stations/station-1/segments", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Segments []domain.Segment `json:"segments"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Segments)
	assert.Zero(t, resp.Total)
}

func TestGenerateBreak(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/breaks/generate", GenerateRequest{
		ContentType:           domain.ContentTypeSong,
		TargetDurationSeconds: 15,
		NextTrack:             domain.TrackRef{Title: "Sunshine Day", Artist: "The Bright Band"},
		Hosts:                 testHosts(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.HostBreakResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Script)
	assert.NotEmpty(t, result.AudioURL)
	assert.Equal(t, "h1", result.HostID)
	assert.Greater(t, result.Duration, 0.0)
}

func TestGenerateBreakRequiresHosts(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/breaks/generate", GenerateRequest{
		ContentType: domain.ContentTypeSong,
		NextTrack:   domain.TrackRef{Title: "Sunshine Day"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one host")
}

func TestGenerateBreakDuoPairsCoHost(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/breaks/generate", GenerateRequest{
		ContentType:           domain.ContentTypeStoryIntro,
		TargetDurationSeconds: 20,
		ContentDescription:    "Noah builds the ark",
		NextTrack:             domain.TrackRef{Title: "Rise and Shine"},
		IsDuo:                 true,
		Hosts:                 testHosts(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.HostBreakResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Script)
}

func TestUpdateIntroScriptClearsCache(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "POST", "/api/v1/stations/station-1/breaks/generate", GenerateRequest{
		ContentType: domain.ContentTypeStationIntro,
		Hosts:       testHosts(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, "PUT", "/api/v1/stations/station-1/intro-script", IntroScriptRequest{
		CustomIntroScript: "You are listening to Kids FM!",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateSegment(t *testing.T) {
	s, store := newTestServer(t)

	seed := []domain.Segment{{
		ID: "seg-1", StationID: "station-1", Type: domain.SegmentTypeHostBreak,
		Status: domain.SegmentStatusPending,
	}}
	require.NoError(t, store.Insert(context.Background(), seed))

	status := domain.SegmentStatusReady
	audioURL := "https://storage.example.com/break.wav"
	w := doJSON(s, "PATCH", "/api/v1/segments/seg-1", UpdateSegmentRequest{
		Status:   &status,
		AudioURL: &audioURL,
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := store.Get(context.Background(), "seg-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SegmentStatusReady, updated.Status)
	assert.Equal(t, audioURL, updated.AudioURL)
}

func TestUpdateSegmentRejectsUnknownStatus(t *testing.T) {
	s, store := newTestServer(t)

	seed := []domain.Segment{{ID: "seg-1", StationID: "station-1", Type: domain.SegmentTypeSong}}
	require.NoError(t, store.Insert(context.Background(), seed))

	status := "finished"
	w := doJSON(s, "PATCH", "/api/v1/segments/seg-1", UpdateSegmentRequest{Status: &status})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSegmentNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	status := domain.SegmentStatusReady
	w := doJSON(s, "PATCH", "/api/v1/segments/missing", UpdateSegmentRequest{Status: &status})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderSegments(t *testing.T) {
	s, store := newTestServer(t)

	seed := []domain.Segment{
		{ID: "seg-1", StationID: "station-1", Type: domain.SegmentTypeSong, Order: 0},
		{ID: "seg-2", StationID: "station-1", Type: domain.SegmentTypeSong, Order: 1},
	}
	require.NoError(t, store.Insert(context.Background(), seed))

	w := doJSON(s, "POST", "/api/v1/segments/reorder", ReorderRequest{
		Segments: []segments.OrderPair{
			{ID: "seg-1", Order: 1},
			{ID: "seg-2", Order: 0},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	listed, err := store.ListByStation(context.Background(), "station-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "seg-2", listed[0].ID)
	assert.Equal(t, "seg-1", listed[1].ID)
}

func TestDeleteSegment(t *testing.T) {
	s, store := newTestServer(t)

	seed := []domain.Segment{{ID: "seg-1", StationID: "station-1", Type: domain.SegmentTypeSong}}
	require.NoError(t, store.Insert(context.Background(), seed))

	w := doJSON(s, "DELETE", "/api/v1/segments/seg-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := store.Get(context.Background(), "seg-1")
	assert.ErrorIs(t, err, segments.ErrNotFound)
}

func TestDeleteSegmentNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s, "DELETE", "/api/v1/segments/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteStationSegments(t *testing.T) {
	s, store := newTestServer(t)

	seed := []domain.Segment{
		{ID: "seg-1", StationID: "station-1", Type: domain.SegmentTypeSong},
		{ID: "seg-2", StationID: "station-1", Type: domain.SegmentTypeSong},
		{ID: "seg-3", StationID: "station-2", Type: domain.SegmentTypeSong},
	}
	require.NoError(t, store.Insert(context.Background(), seed))

	w := doJSON(s, "DELETE", "/api/v1/stations/station-1/segments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":2`)

	remaining, err := store.ListByStation(context.Background(), "station-2")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
