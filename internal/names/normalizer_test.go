package names

import (
	"fmt"
	"sync"
	"testing"

	"github.com/killallgit/coffeebreak-api/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRegistry(t *testing.T, canonicals ...string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Update(func(tx registry.Tx) error {
		for _, c := range canonicals {
			tx.InsertCanonical(c)
		}
		return nil
	}))
	return reg
}

func TestClean(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  hector   socas ", "Hector Socas"},
		{"Francis VIllatoro", "Francis Villatoro"},
		{"ángel lópez-sánchez", "Ángel López-Sánchez"},
		{"y Sara Robisco.", "Sara Robisco"},
		{"Alberto Aparici y", "Alberto Aparici"},
		{"J Héctor Socas", "Héctor Socas"},
		{"miguel DE unamuno", "Miguel de Unamuno"},
		{"Dr. José Edelstein", "José Edelstein"},
		{"con Pérez.", "Pérez"},
		{"La Fuente", "La Fuente"},
		{"De la Fuente", "De la Fuente"},
		{"de la fuente.", "De la Fuente"},
		{"y del Valle", "Del Valle"},
		{"Sara de", "Sara"},
		{"de", ""},
		{"  ", ""},
		{"y", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Clean(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Clean(got), "Clean must be idempotent")
		})
	}
}

func TestClean_LeadingParticleKeepsPeopleApart(t *testing.T) {
	assert.NotEqual(t, Clean("La Fuente"), Clean("De la Fuente"))
	assert.Less(t, Similarity(Clean("La Fuente"), Clean("De la Fuente")), DefaultThreshold)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"Héctor Socas", "Sara Robisco"}, Split("Héctor Socas y Sara Robisco"))
	assert.Equal(t, []string{"Alberto Aparici", "Francis Villatoro", "Carlos González"},
		Split("Alberto Aparici, Francis Villatoro and Carlos González"))
	assert.Equal(t, []string{"Ángel López-Sánchez"}, Split("Ángel López-Sánchez"))
	assert.Empty(t, Split(" , "))
}

// Known variant pairs observed in the dataset, used to tune DefaultThreshold
func TestSimilarity_KnownVariants(t *testing.T) {
	same := [][2]string{
		{"Héctor Socas", "Hector Socas"},
		{"Ángel López Sánchez", "Ángel López-Sánchez"},
		{"Francis Villatoro", "Francis VIllatoro"},
		{"Héctor Socas", "Hector Soca"},
		{"Alberto Aparici", "Alberto Apparici"},
		{"José Edelstein", "Jose Edelstain"},
		{"Alberto Aparici", "Aparici Alberto"},
		{"Ignacio Crespo", "Ignacio Crespo."},
	}
	for _, p := range same {
		assert.GreaterOrEqual(t, Similarity(p[0], p[1]), DefaultThreshold, "%q vs %q", p[0], p[1])
	}

	distinct := [][2]string{
		{"Carlos Westendorp", "Carlos González"},
		{"Juan García", "Juan Garcés"},
		{"Héctor Socas", "Héctor Vives"},
		{"Sara Robisco", "Sara Gil"},
		{"Ana", "Ane"},
		{"Jose Luis Martin", "Jose Luis Marin"},
		{"María José García", "María José Garcés"},
		{"Luis Martin Pérez", "Pérez Luis Marin"},
	}
	for _, p := range distinct {
		assert.Less(t, Similarity(p[0], p[1]), DefaultThreshold, "%q vs %q", p[0], p[1])
	}
}

func TestNormalize_DiacriticVariantMapsToCanonical(t *testing.T) {
	reg := seededRegistry(t, "Héctor Socas")
	n := NewNormalizer(reg)

	d, err := n.Normalize("Hector Socas")
	require.NoError(t, err)
	assert.Equal(t, "Héctor Socas", d.Canonical)
	assert.Equal(t, OutcomeExact, d.Outcome)
	assert.Equal(t, 1, reg.Len())

	entry, _ := reg.Lookup("Héctor Socas")
	assert.Contains(t, entry.Variants, "Hector Socas")
}

func TestNormalize_TypoMatches(t *testing.T) {
	reg := seededRegistry(t, "Héctor Socas")
	n := NewNormalizer(reg)

	d, err := n.Normalize("hector soca")
	require.NoError(t, err)
	assert.Equal(t, "Héctor Socas", d.Canonical)
	assert.Equal(t, OutcomeMatched, d.Outcome)
	require.Len(t, d.Candidates, 1)
	assert.NotEmpty(t, d.ID)

	decisions := reg.Decisions()
	require.Len(t, decisions, 1)
	assert.Equal(t, "matched", decisions[0].Outcome)

	// The typo is now a known variant: the next sighting is exact
	d, err = n.Normalize("Hector Soca")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExact, d.Outcome)
}

func TestNormalize_DistinctPeopleSharingFirstName(t *testing.T) {
	reg := registry.New()
	n := NewNormalizer(reg)

	a, err := n.Normalize("Carlos Westendorp")
	require.NoError(t, err)
	b, err := n.Normalize("Carlos González")
	require.NoError(t, err)

	assert.NotEqual(t, a.Canonical, b.Canonical)
	assert.Equal(t, OutcomeMinted, a.Outcome)
	assert.Equal(t, OutcomeMinted, b.Outcome)
	assert.Equal(t, 2, reg.Len())
}

func TestNormalize_OneDifferingSurnameMintsTwoPeople(t *testing.T) {
	pairs := [][2]string{
		{"Jose Luis Martin", "Jose Luis Marin"},
		{"María José García", "María José Garcés"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			reg := registry.New()
			n := NewNormalizer(reg)

			a, err := n.Normalize(p[0])
			require.NoError(t, err)
			b, err := n.Normalize(p[1])
			require.NoError(t, err)

			assert.Equal(t, OutcomeMinted, a.Outcome)
			assert.Equal(t, OutcomeMinted, b.Outcome)
			assert.Equal(t, p[1], b.Canonical)
			assert.Equal(t, 2, reg.Len())
		})
	}
}

func TestSimilarity_WordAgreement(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"Jose Manuel Rodrigue", "Jose Manuel Rodriguez", true},
		{"Alberto Aparici", "Alberto Apparici", true},
		{"Héctor Socas", "Héctor Soca", true},
		{"Jose Luis Martin", "Jose Luis Marin", false},
		{"Carlos Briones", "Carlos Briones Llorente", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			s := Similarity(tt.a, tt.b)
			assert.Equal(t, s, Similarity(tt.b, tt.a))
			if tt.same {
				assert.GreaterOrEqual(t, s, DefaultThreshold)
			} else {
				assert.Less(t, s, DefaultThreshold)
			}
		})
	}
}

func TestNormalize_AmbiguousPrefersMostSeen(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Update(func(tx registry.Tx) error {
		tx.InsertCanonical("Jose Manuel Rodriguez")
		tx.InsertCanonical("Jose Manuel Rodrigues")
		if err := tx.RecordVariant("Jose Manuel Rodrigues", "José Manuel Rodrigues"); err != nil {
			return err
		}
		return tx.RecordVariant("Jose Manuel Rodrigues", "Jose M. Rodrigues")
	}))
	n := NewNormalizer(reg)

	// a prefix of both surnames: scores tie, so observed variants decide
	d, err := n.Normalize("Jose Manuel Rodrigue")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAmbiguous, d.Outcome)
	assert.Equal(t, "Jose Manuel Rodrigues", d.Canonical)
	require.Len(t, d.Candidates, 2)
	assert.Equal(t, "Jose Manuel Rodrigues", d.Candidates[0].Canonical)
	assert.Equal(t, 3, d.Candidates[0].Variants)
	assert.InDelta(t, d.Candidates[1].Score, d.Candidates[0].Score, 1e-9)
	assert.Contains(t, d.Reason, "most observed variants")

	rec := reg.Decisions()
	require.Len(t, rec, 1)
	assert.Equal(t, "ambiguous", rec[0].Outcome)
	assert.Len(t, rec[0].Candidates, 2)
}

func TestNormalize_Idempotent(t *testing.T) {
	reg := seededRegistry(t, "Héctor Socas", "Ángel López-Sánchez", "Francis Villatoro")
	n := NewNormalizer(reg)

	raws := []string{
		"Hector Socas", "héctor  socas", "Angel Lopez Sanchez", "Francis VIllatoro",
		"Sara Robisco.", "y Alberto Aparici", "Carlos Westendorp", "carlos gonzález",
	}
	for _, raw := range raws {
		t.Run(raw, func(t *testing.T) {
			first, err := n.Normalize(raw)
			require.NoError(t, err)
			second, err := n.Normalize(first.Canonical)
			require.NoError(t, err)
			assert.Equal(t, first.Canonical, second.Canonical)
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	n := NewNormalizer(registry.New())
	_, err := n.Normalize(" y ")
	assert.Error(t, err)
}

func TestNormalizeAll(t *testing.T) {
	reg := seededRegistry(t, "Héctor Socas")
	n := NewNormalizer(reg)

	decisions, err := n.NormalizeAll("Hector Socas y Sara Robisco, ")
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "Héctor Socas", decisions[0].Canonical)
	assert.Equal(t, "Sara Robisco", decisions[1].Canonical)
	assert.Equal(t, OutcomeMinted, decisions[1].Outcome)
}

func TestWithThreshold(t *testing.T) {
	reg := seededRegistry(t, "Héctor Socas")
	strict := NewNormalizer(reg, WithThreshold(0.99))
	assert.InDelta(t, 0.99, strict.Threshold(), 1e-9)

	d, err := strict.Normalize("Hector Soca")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMinted, d.Outcome)

	assert.InDelta(t, DefaultThreshold, NewNormalizer(reg, WithThreshold(7)).Threshold(), 1e-9)
}

func TestNormalize_ConcurrentNearDuplicatesMintOnce(t *testing.T) {
	reg := registry.New()
	n := NewNormalizer(reg)

	spellings := []string{"Héctor Socas", "Hector Socas", "Hector Soca", "héctor socas"}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := n.Normalize(spellings[i%len(spellings)])
			assert.NoError(t, err, fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
}
