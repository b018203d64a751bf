package topics

import (
	"testing"

	"github.com/killallgit/coffeebreak-api/internal/diagnostics"
	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		prose string
		want  []models.Topic
	}{
		{
			name:  "inline markers",
			prose: "Intro (min 5:00); Black holes (32:00)",
			want: []models.Topic{
				{Title: "Intro", TimestampSeconds: 300},
				{Title: "Black holes", TimestampSeconds: 1920},
			},
		},
		{
			name:  "hour markers and trailing min",
			prose: "Noticias (2:10). Ondas gravitacionales (45:00 min). Señales de los oyentes (1:21:30)",
			want: []models.Topic{
				{Title: "Noticias", TimestampSeconds: 130},
				{Title: "Ondas gravitacionales", TimestampSeconds: 2700},
				{Title: "Señales de los oyentes", TimestampSeconds: 4890},
			},
		},
		{
			name:  "info style lines",
			prose: "Ep500_B: Petaneutrino\n-Presentación (0:00)\n-Neutrinos de ultra alta energía (12:30)\n-Agujeros negros (1:05:00)\nContertulios: Héctor Socas, Sara Robisco.",
			want: []models.Topic{
				{Title: "Presentación", TimestampSeconds: 0},
				{Title: "Neutrinos de ultra alta energía", TimestampSeconds: 750},
				{Title: "Agujeros negros", TimestampSeconds: 3900},
			},
		},
		{
			name:  "min before parentheses",
			prose: "Intro min (1:00), y el Sol min (10:00).",
			want: []models.Topic{
				{Title: "Intro", TimestampSeconds: 60},
				{Title: "el Sol", TimestampSeconds: 600},
			},
		},
		{
			name:  "zero markers",
			prose: "  Un episodio especial sin índice de temas.  ",
			want: []models.Topic{
				{Title: "Un episodio especial sin índice de temas.", TimestampSeconds: 0},
			},
		},
		{
			name:  "year in parentheses is prose",
			prose: "El premio Nobel (2019)",
			want: []models.Topic{
				{Title: "El premio Nobel (2019)", TimestampSeconds: 0},
			},
		},
		{
			name:  "empty prose",
			prose: "   ",
			want:  nil,
		},
	}

	s := NewSegmenter(ModeAfter)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Segment(tt.prose))
		})
	}
}

func TestSegment_MalformedMarkerIsMergedIntoTitle(t *testing.T) {
	c := diagnostics.NewCollector()
	s := NewSegmenter(ModeAfter)

	got := s.SegmentTo("Intro (5:00); Materia oscura (12:75) y energía oscura (20:00); Final (1:02:03)", c)

	require.Len(t, got, 3)
	assert.Equal(t, models.Topic{Title: "Intro", TimestampSeconds: 300}, got[0])
	assert.Equal(t, "Materia oscura (12:75) y energía oscura", got[1].Title)
	assert.Equal(t, 1200, got[1].TimestampSeconds)
	assert.Equal(t, models.Topic{Title: "Final", TimestampSeconds: 3723}, got[2])

	require.Equal(t, 1, c.Count(diagnostics.MalformedTimestamp))
	assert.Equal(t, "12:75", c.Flags()[0].Details["literal"])
}

func TestSegment_OnlyMalformedMarkers(t *testing.T) {
	c := diagnostics.NewCollector()
	got := NewSegmenter(ModeAfter).SegmentTo("Tema raro (1:2:3:4)", c)

	assert.Equal(t, []models.Topic{{Title: "Tema raro (1:2:3:4)"}}, got)
	assert.Equal(t, 1, c.Count(diagnostics.MalformedTimestamp))
}

func TestSegment_Deterministic(t *testing.T) {
	prose := "Intro (min 5:00); Black holes (32:00); Exoplanetas (50:10)"
	s := NewSegmenter(ModeAuto)
	first := s.Segment(prose)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Segment(prose))
	}
}

func TestSegment_MarkerBefore(t *testing.T) {
	prose := "(0:00) Presentación\n(12:30) Neutrinos\n(1:05:00) Agujeros negros"
	want := []models.Topic{
		{Title: "Presentación", TimestampSeconds: 0},
		{Title: "Neutrinos", TimestampSeconds: 750},
		{Title: "Agujeros negros", TimestampSeconds: 3900},
	}

	assert.Equal(t, want, NewSegmenter(ModeBefore).Segment(prose))

	c := diagnostics.NewCollector()
	assert.Equal(t, want, NewSegmenter(ModeAuto).SegmentTo(prose, c))
	assert.Equal(t, 1, c.Count(diagnostics.MarkerOrderReversed))
}

func TestSegment_AutoKeepsDefaultDirection(t *testing.T) {
	c := diagnostics.NewCollector()
	got := NewSegmenter(ModeAuto).SegmentTo("Intro (min 5:00); Black holes (32:00)", c)

	assert.Equal(t, "Intro", got[0].Title)
	assert.Equal(t, 0, c.Count(diagnostics.MarkerOrderReversed))
}

func TestNewSegmenter_UnknownMode(t *testing.T) {
	assert.Equal(t, ModeAfter, NewSegmenter(Mode("sideways")).Mode())
}
