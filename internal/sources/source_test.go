package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/killallgit/coffeebreak-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoBlock = `Ep500_B: Petaneutrinos y otras cosas
Contertulios: Héctor Socas, Sara Robisco y Francis Villatoro. Imagen de portada: NASA/JPL.
Escucha este episodio completo y accede a todo el contenido exclusivo de Coffee Break: Señal y Ruido. Descubre antes que nadie los nuevos episodios en https://go.ivoox.com/sq/123
Tertulia: Petaneutrinos (0:05:12)
Noticias de Marte (1:02:00)
Más info: https://arxiv.org/abs/2401.00001).`

func TestParseInfo(t *testing.T) {
	src, err := ParseInfo(infoBlock, DefaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, models.SourceInfo, src.Kind())
	assert.Equal(t, "Ep500_B: Petaneutrinos y otras cosas", src.ExtractTitle())
	assert.Equal(t, []string{"Héctor Socas, Sara Robisco y Francis Villatoro"}, src.ExtractParticipants())
	assert.Equal(t, []string{"https://arxiv.org/abs/2401.00001"}, src.ExtractLinks())

	prose := src.ExtractTopics()
	assert.Contains(t, prose, "Tertulia: Petaneutrinos (0:05:12)")
	assert.Contains(t, prose, "Noticias de Marte (1:02:00)")
	assert.NotContains(t, prose, "Escucha este episodio")
	assert.NotContains(t, prose, "Contertulios")
	assert.NotContains(t, prose, "Ep500_B")
	assert.False(t, src.Empty())
}

func TestParseRSS_FeedItem(t *testing.T) {
	item := `<item>
  <title>Ep500_B: Petaneutrinos</title>
  <link>https://www.ivoox.com/ep500-b_rf_1.html</link>
  <description><![CDATA[<p>Tertulia (0:05:12)</p><p>Contertulios: Héctor Socas y Sara Robisco</p><p>Ver <a href="https://www.nature.com/articles/x1">Nature</a></p>]]></description>
</item>`

	src, err := ParseRSS(item, DefaultCatalog())
	require.NoError(t, err)

	assert.Equal(t, models.SourceRSS, src.Kind())
	assert.Equal(t, "Ep500_B: Petaneutrinos", src.ExtractTitle())
	assert.Equal(t, []string{"Héctor Socas y Sara Robisco"}, src.ExtractParticipants())
	assert.ElementsMatch(t, []string{
		"https://www.ivoox.com/ep500-b_rf_1.html",
		"https://www.nature.com/articles/x1",
	}, src.ExtractLinks())
	assert.Contains(t, src.ExtractTopics(), "Tertulia (0:05:12)")
	assert.NotContains(t, src.ExtractTopics(), "<p>")
}

func TestParseRSS_PlainText(t *testing.T) {
	src, err := ParseRSS("Ep500_A: Neutrinos\nTertulia (0:01:00)\nMarte (0:20:00)", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ep500_A: Neutrinos", src.ExtractTitle())
	assert.Equal(t, "Tertulia (0:01:00)\nMarte (0:20:00)", src.ExtractTopics())

	// Without an episode title line the whole text is topic prose
	src, err = ParseRSS("Hoy hablamos de:\nTertulia (0:01:00)", nil)
	require.NoError(t, err)
	assert.Empty(t, src.ExtractTitle())
	assert.Equal(t, "Hoy hablamos de:\nTertulia (0:01:00)", src.ExtractTopics())
}

func TestParseWeb_HTML(t *testing.T) {
	page := `<html><head><title>Coffee Break 500</title></head><body>
<h1>Ep500: Petaneutrinos</h1>
<div><p>Noticias (0:10:00)</p><a href="https://twitter.com/cb">tw</a><a href="/relative">r</a></div>
</body></html>`

	src, err := ParseWeb(page, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, "Ep500: Petaneutrinos", src.ExtractTitle())
	assert.Equal(t, []string{"https://twitter.com/cb"}, src.ExtractLinks())
	assert.Contains(t, src.ExtractTopics(), "Noticias (0:10:00)")
	assert.NotContains(t, src.ExtractTopics(), "Coffee Break 500")
}

func TestFromPart(t *testing.T) {
	set, err := FromPart(models.PartBundle{
		EpisodeID: "Ep500_B",
		Info:      infoBlock,
		RSS:       "   ",
		Web:       "Escucha este episodio completo y accede a todo el contenido exclusivo",
	}, DefaultCatalog())
	require.NoError(t, err)

	assert.NotNil(t, set.Info)
	assert.Nil(t, set.RSS)
	assert.Nil(t, set.Web, "a source that is only boilerplate is dropped")
	assert.Len(t, set.All(), 1)
}

func TestParse_UnknownKind(t *testing.T) {
	_, err := Parse(models.SourceNone, "text", nil)
	assert.Error(t, err)
}

func TestCatalog_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boilerplate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`boilerplate:
  - name: app
    literal: "Escucha   Coffee Break en la app"
`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultEntries)+1, c.Len())
	assert.Equal(t, "Tertulia (0:01:00)", c.Strip("escucha coffee break\nen la app\n\n\n\nTertulia (0:01:00)"))
	assert.Equal(t, []string{"app"}, c.Matches("Escucha Coffee Break en la app"))
}

func TestCatalog_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, len(DefaultEntries), c.Len())
}

func TestCatalog_InvalidEntries(t *testing.T) {
	_, err := NewCatalog([]CatalogEntry{{Name: "empty"}})
	assert.Error(t, err)

	_, err = NewCatalog([]CatalogEntry{{Name: "bad", Pattern: "("}})
	assert.Error(t, err)
}

func TestTrimLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.org/a", "https://x.org/a"},
		{"https://x.org/a).", "https://x.org/a"},
		{"https://x.org/a,", "https://x.org/a"},
		{"https://en.wikipedia.org/wiki/Foo_(bar)", "https://en.wikipedia.org/wiki/Foo_(bar)"},
		{"https://en.wikipedia.org/wiki/Foo_(bar)).", "https://en.wikipedia.org/wiki/Foo_(bar)"},
		{"https://x.org/a];", "https://x.org/a"},
		{"https://", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimLink(tt.in))
		})
	}
}

func TestExtractLinks(t *testing.T) {
	text := "Ver (https://x.org/a) y https://x.org/a. También 'https://y.org/b' y <https://z.org/c>"
	assert.Equal(t, []string{"https://x.org/a", "https://y.org/b", "https://z.org/c"}, ExtractLinks(text))
	assert.Empty(t, ExtractLinks("sin enlaces"))
}

func TestLinkFilter(t *testing.T) {
	f := NewLinkFilter([]string{"ivoox.com", "www.twitter.com"}, []string{"https://patreon.com/cb"})

	assert.False(t, f.Allow("https://www.ivoox.com/ep500"))
	assert.False(t, f.Allow("https://go.ivoox.com/sq/1"))
	assert.False(t, f.Allow("https://twitter.com/cb"))
	assert.False(t, f.Allow("https://patreon.com/cb"))
	assert.True(t, f.Allow("https://notivoox.com/x"))
	assert.True(t, f.Allow("https://arxiv.org/abs/1"))

	assert.Equal(t, []string{"https://arxiv.org/abs/1"},
		f.Apply([]string{"https://ivoox.com/a", "https://arxiv.org/abs/1"}))

	var none *LinkFilter
	assert.True(t, none.Allow("https://ivoox.com/a"))
}
