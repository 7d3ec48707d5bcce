package precedents_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/internal/precedents"
	"github.com/JaimeStill/tariff/workflow"
)

func ruling(ref, code string) workflow.PrecedentCase {
	return workflow.PrecedentCase{Reference: ref, ClassificationCode: code}
}

func TestAnalyzeConsensus(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		c := precedents.AnalyzeConsensus(nil, "8471.30")

		assert.False(t, c.HasConsensus)
		assert.Zero(t, c.AgreementRate)
		assert.Equal(t, workflow.StrengthNone, c.Strength)
		assert.Empty(t, c.SupportingCases)
		assert.Empty(t, c.ConflictingCases)
		assert.NotEmpty(t, c.Analysis)
	})

	t.Run("two of three is weak without consensus", func(t *testing.T) {
		cases := []workflow.PrecedentCase{
			ruling("A", "8471.30"),
			ruling("B", "8471.30"),
			ruling("C", "8473.30"),
		}
		c := precedents.AnalyzeConsensus(cases, "8471.30")

		assert.InDelta(t, 0.667, c.AgreementRate, 0.001)
		assert.False(t, c.HasConsensus)
		assert.Equal(t, workflow.StrengthWeak, c.Strength)
		assert.Equal(t, "8471.30", c.ConsensusCode)
		assert.Len(t, c.SupportingCases, 2)
		require.Len(t, c.ConflictingCases, 1)
		assert.Equal(t, "C", c.ConflictingCases[0].Reference)
		assert.True(t, c.TargetMatch)
	})

	t.Run("ties go to the first encountered code", func(t *testing.T) {
		cases := []workflow.PrecedentCase{
			ruling("A", "9403.20"),
			ruling("B", "9401.71"),
			ruling("C", "9401.71"),
			ruling("D", "9403.20"),
		}
		c := precedents.AnalyzeConsensus(cases, "")

		assert.Equal(t, "9403.20", c.ConsensusCode)
		assert.Equal(t, 0.5, c.AgreementRate)
		assert.False(t, c.TargetMatch)
	})

	t.Run("code formatting does not split groups", func(t *testing.T) {
		cases := []workflow.PrecedentCase{
			ruling("A", "8471.30.00"),
			ruling("B", "84713000"),
			ruling("C", "8471 30 00"),
		}
		c := precedents.AnalyzeConsensus(cases, "8471300000")

		assert.True(t, c.HasConsensus)
		assert.Equal(t, 1.0, c.AgreementRate)
		assert.Equal(t, workflow.StrengthStrong, c.Strength)
		assert.True(t, c.TargetMatch)
	})

	t.Run("target in another heading does not match", func(t *testing.T) {
		cases := []workflow.PrecedentCase{ruling("A", "8471.30"), ruling("B", "8471.30")}
		c := precedents.AnalyzeConsensus(cases, "8517.62")

		assert.True(t, c.HasConsensus)
		assert.False(t, c.TargetMatch)
		assert.Contains(t, c.Analysis, "differs")
	})
}

func TestStrengthOf(t *testing.T) {
	tests := []struct {
		rate float64
		want workflow.Strength
	}{
		{1.0, workflow.StrengthStrong},
		{0.9, workflow.StrengthStrong},
		{0.89, workflow.StrengthModerate},
		{0.7, workflow.StrengthModerate},
		{0.69, workflow.StrengthWeak},
		{0.5, workflow.StrengthWeak},
		{0.49, workflow.StrengthNone},
		{0, workflow.StrengthNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, precedents.StrengthOf(tt.rate), "rate %v", tt.rate)
	}
}

func TestTargetMatches(t *testing.T) {
	assert.True(t, precedents.TargetMatches("8471.30", "8471.30"))
	assert.True(t, precedents.TargetMatches("8471.41", "8471.30"))
	assert.False(t, precedents.TargetMatches("8473.30", "8471.30"))
	assert.False(t, precedents.TargetMatches("", "8471.30"))
}

func TestRelevance(t *testing.T) {
	scorer := precedents.NewScorer(lookup.MustDefault())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("exact code with keywords, recent, top authority", func(t *testing.T) {
		c := workflow.PrecedentCase{
			ClassificationCode: "8471.30",
			Description:        "Portable laptop computer with keyboard",
			Date:               workflow.NewDate(2024, time.June, 1),
			Source:             "WCO",
		}
		got := scorer.Relevance(c, "8471.30", []string{"portable", "laptop"}, now)
		assert.InDelta(t, 85.0/75.0*100, got, 0.0001)
	})

	t.Run("code tiers", func(t *testing.T) {
		tests := []struct {
			code string
			want float64
		}{
			{"8471.30", 50},
			{"8471.41", 20},
			{"8473.30", 10},
			{"9403.20", 0},
		}
		for _, tt := range tests {
			c := workflow.PrecedentCase{ClassificationCode: tt.code}
			got := scorer.Relevance(c, "8471.30", nil, now)
			assert.InDelta(t, tt.want/75*100, got, 0.0001, tt.code)
		}
	})

	t.Run("keyword matches cap at five", func(t *testing.T) {
		c := workflow.PrecedentCase{Description: "alpha bravo charlie delta echoes foxtrot golfs"}
		keywords := []string{"alpha", "bravo", "charlie", "delta", "echoes", "foxtrot", "golfs"}
		got := scorer.Relevance(c, "", keywords, now)
		assert.InDelta(t, 25.0/75*100, got, 0.0001)
	})

	t.Run("exact code earns the heading points too", func(t *testing.T) {
		c := workflow.PrecedentCase{ClassificationCode: "8471.30"}
		assert.InDelta(t, 66.6667, scorer.Relevance(c, "8471.30", nil, now), 0.001)
	})

	t.Run("short keywords never match", func(t *testing.T) {
		c := workflow.PrecedentCase{Description: "a ruling on a bag"}
		assert.Zero(t, scorer.Relevance(c, "", []string{"a", "on", "bag"}, now))

		c.Description = "a ruling on a desk lamp"
		assert.InDelta(t, 5.0/75*100, scorer.Relevance(c, "", []string{"a", "lamp"}, now), 0.0001)
	})

	t.Run("old rulings earn no recency points", func(t *testing.T) {
		c := workflow.PrecedentCase{Date: workflow.NewDate(2020, time.January, 1)}
		assert.Zero(t, scorer.Relevance(c, "", nil, now))
	})

	t.Run("regional authority", func(t *testing.T) {
		c := workflow.PrecedentCase{Source: "EBTI"}
		assert.InDelta(t, 5.0/75*100, scorer.Relevance(c, "", nil, now), 0.0001)
	})

	t.Run("maximum exceeds one hundred", func(t *testing.T) {
		c := workflow.PrecedentCase{
			ClassificationCode: "8471.30",
			Description:        "alpha bravo charlie delta echoes",
			Date:               workflow.NewDate(2025, time.March, 1),
			Source:             "wcoomd.org",
		}
		got := scorer.Relevance(c, "8471.30", []string{"alpha", "bravo", "charlie", "delta", "echoes"}, now)
		assert.InDelta(t, 100.0/75*100, got, 0.0001)
		assert.Greater(t, got, 100.0)
	})
}

func TestRank(t *testing.T) {
	scorer := precedents.NewScorer(lookup.MustDefault())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []workflow.PrecedentCase{
		ruling("far", "9403.20"),
		ruling("exact", "8471.30"),
		ruling("heading", "8471.41"),
		ruling("far-2", "9403.20"),
	}

	ranked := scorer.Rank(cases, "8471.30", nil, now)
	require.Len(t, ranked, 4)
	assert.Equal(t, "exact", ranked[0].Case.Reference)
	assert.Equal(t, "heading", ranked[1].Case.Reference)
	assert.Equal(t, "far", ranked[2].Case.Reference)
	assert.Equal(t, "far-2", ranked[3].Case.Reference)
}

func TestKeywords(t *testing.T) {
	profile := &workflow.ProductProfile{Name: "Laptop computer", PrimaryFunction: "data processing"}
	assert.Equal(t,
		[]string{"laptop", "computer", "data", "processing", "portable"},
		precedents.Keywords(profile, "portable"),
	)
	assert.Equal(t, []string{"desk", "lamp", "pump"}, precedents.Keywords(nil, "Desk lamp pump"))
}
