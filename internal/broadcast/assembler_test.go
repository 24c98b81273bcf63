package broadcast

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godlykids/radio-engine/internal/domain"
)

func songRefs(titles ...string) []SongRef {
	refs := make([]SongRef, 0, len(titles))
	for i, title := range titles {
		refs = append(refs, SongRef{
			PlaylistRef: domain.PlaylistRef{PlaylistID: "pl-1", ItemIndex: i},
			Info: domain.SongInfo{
				Title:    title,
				Artist:   "Artist " + title,
				AudioURL: "mem://songs/" + title,
				Duration: 180,
			},
		})
	}
	return refs
}

func twoHosts() []domain.Host {
	return []domain.Host{
		{ID: "h1", Name: "Joy", Gender: domain.GenderFemale, Enabled: true, Order: 0},
		{ID: "h2", Name: "Max", Gender: domain.GenderMale, Enabled: true, Order: 1},
	}
}

func newTestAssembler() *Assembler {
	return NewAssembler(rand.New(rand.NewSource(1)))
}

func TestAssembleInterleavesBreaksAndSongs(t *testing.T) {
	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1", "S2", "S3"), twoHosts(), AssembleOptions{
		Frequency:   2,
		RotateHosts: true,
	})
	require.NoError(t, err)
	require.Len(t, segments, 5)

	// break(H1, next=S1), S1, S2, break(H2, next=S3, prev=S2), S3
	assert.Equal(t, domain.SegmentTypeHostBreak, segments[0].Type)
	assert.Equal(t, "h1", segments[0].HostID)
	assert.Equal(t, "S1", segments[0].NextTrack.Title)
	assert.Nil(t, segments[0].PreviousTrack, "the leading break has no previous track")

	assert.Equal(t, domain.SegmentTypeSong, segments[1].Type)
	assert.Equal(t, "S1", segments[1].SongInfo.Title)

	assert.Equal(t, domain.SegmentTypeSong, segments[2].Type)
	assert.Equal(t, "S2", segments[2].SongInfo.Title)

	assert.Equal(t, domain.SegmentTypeHostBreak, segments[3].Type)
	assert.Equal(t, "h2", segments[3].HostID)
	assert.Equal(t, "S3", segments[3].NextTrack.Title)
	require.NotNil(t, segments[3].PreviousTrack)
	assert.Equal(t, "S2", segments[3].PreviousTrack.Title)

	assert.Equal(t, domain.SegmentTypeSong, segments[4].Type)
	assert.Equal(t, "S3", segments[4].SongInfo.Title)

	// One strictly increasing order counter shared by breaks and songs
	for i, seg := range segments {
		assert.Equal(t, i, seg.Order)
	}
}

func TestAssembleHostRotationCycles(t *testing.T) {
	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1", "S2", "S3", "S4", "S5"), twoHosts(), AssembleOptions{
		Frequency:   1,
		RotateHosts: true,
	})
	require.NoError(t, err)

	var hostIDs []string
	for _, seg := range segments {
		if seg.Type == domain.SegmentTypeHostBreak {
			hostIDs = append(hostIDs, seg.HostID)
		}
	}
	assert.Equal(t, []string{"h1", "h2", "h1", "h2", "h1"}, hostIDs)
}

func TestAssembleWithoutRotationKeepsFirstHost(t *testing.T) {
	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1", "S2", "S3", "S4"), twoHosts(), AssembleOptions{
		Frequency: 2,
	})
	require.NoError(t, err)

	for _, seg := range segments {
		if seg.Type == domain.SegmentTypeHostBreak {
			assert.Equal(t, "h1", seg.HostID)
		}
	}
}

func TestAssembleStatuses(t *testing.T) {
	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1", "S2"), twoHosts(), AssembleOptions{Frequency: 1})
	require.NoError(t, err)

	for _, seg := range segments {
		switch seg.Type {
		case domain.SegmentTypeHostBreak:
			assert.Equal(t, domain.SegmentStatusPending, seg.Status)
			assert.Empty(t, seg.AudioURL)
		case domain.SegmentTypeSong:
			assert.Equal(t, domain.SegmentStatusReady, seg.Status)
			require.NotNil(t, seg.SongInfo)
			require.NotNil(t, seg.PlaylistRef)
		}
	}
}

func TestAssembleShuffleIsAPermutation(t *testing.T) {
	titles := []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8"}

	for seed := int64(0); seed < 10; seed++ {
		assembler := NewAssembler(rand.New(rand.NewSource(seed)))
		segments, err := assembler.Assemble("station-1", songRefs(titles...), twoHosts(), AssembleOptions{
			Frequency: 3,
			Shuffle:   true,
		})
		require.NoError(t, err)

		var got []string
		for _, seg := range segments {
			if seg.Type == domain.SegmentTypeSong {
				got = append(got, seg.SongInfo.Title)
			}
		}

		require.Len(t, got, len(titles))
		sorted := append([]string(nil), got...)
		sort.Strings(sorted)
		assert.Equal(t, titles, sorted, "shuffle must preserve the song multiset")
	}
}

func TestAssembleShuffleDoesNotMutateInput(t *testing.T) {
	songs := songRefs("S1", "S2", "S3", "S4", "S5")
	_, err := newTestAssembler().Assemble("station-1", songs, twoHosts(), AssembleOptions{Frequency: 1, Shuffle: true})
	require.NoError(t, err)

	for i, s := range songs {
		assert.Equal(t, i, s.PlaylistRef.ItemIndex)
	}
}

func TestAssembleAutoEnablesRequestedHosts(t *testing.T) {
	hosts := []domain.Host{
		{ID: "h1", Name: "Joy", Enabled: false, Order: 0},
		{ID: "h2", Name: "Max", Enabled: false, Order: 1},
	}

	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1"), hosts, AssembleOptions{Frequency: 1})
	require.NoError(t, err)
	require.NotEmpty(t, segments)
	assert.Equal(t, "h1", segments[0].HostID)
}

func TestAssembleWithoutHosts(t *testing.T) {
	_, err := newTestAssembler().Assemble("station-1", songRefs("S1"), nil, AssembleOptions{Frequency: 1})
	assert.ErrorIs(t, err, ErrNoHosts)
}

func TestAssembleStartOrderOffset(t *testing.T) {
	segments, err := newTestAssembler().Assemble("station-1", songRefs("S1", "S2"), twoHosts(), AssembleOptions{
		Frequency:  2,
		StartOrder: 10,
	})
	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, 10, segments[0].Order)
	assert.Equal(t, 12, segments[2].Order)
}
