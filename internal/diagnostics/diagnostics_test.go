package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Flag(Flag{Kind: MissingDuration, Message: "no duration"})
		}()
	}
	wg.Wait()
	c.Flag(Flag{Kind: DurationMismatch, Message: "sum differs"})

	assert.Len(t, c.Flags(), 51)
	assert.Equal(t, 50, c.Count(MissingDuration))
	assert.Equal(t, 1, c.Count(DurationMismatch))
	assert.Equal(t, 0, c.Count(AmbiguousNameMatch))
}

func TestWithEpisode(t *testing.T) {
	c := NewCollector()
	sink := WithEpisode(c, "500", "Ep500_A")

	sink.Flag(Flag{Kind: MalformedTimestamp, Message: "skipped"})
	sink.Flag(Flag{Kind: MalformedTimestamp, Episode: "499", Message: "kept"})

	flags := c.Flags()
	assert.Equal(t, "500", flags[0].Episode)
	assert.Equal(t, "Ep500_A", flags[0].Part)
	assert.Equal(t, "499", flags[1].Episode)
}

func TestTee(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	Tee(a, nil, b).Flag(Flag{Kind: OutOfOrderTopics, Message: "scrambled"})

	assert.Len(t, a.Flags(), 1)
	assert.Len(t, b.Flags(), 1)
}

func TestFlagString(t *testing.T) {
	f := Flag{
		Kind:    MalformedTimestamp,
		Episode: "500",
		Message: "marker skipped",
		Details: map[string]string{"literal": "5:75", "at": "12"},
	}
	assert.Equal(t, `malformed_timestamp episode=500: marker skipped at="12" literal="5:75"`, f.String())
}
