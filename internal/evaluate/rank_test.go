package evaluate

import (
	"testing"

	"github.com/pkgscout/discovery/internal/score"
)

func eval(name string, composite float64, popularity int) Evaluation {
	return Evaluation{
		Name:  name,
		Score: score.Record{Composite: composite, Popularity: popularity},
	}
}

func TestRank(t *testing.T) {
	evals := []Evaluation{
		eval("low", 4.2, 2),
		eval("high", 8.1, 6),
		eval("mid", 6.0, 4),
	}

	ranked := Rank(evals)

	want := []string{"high", "mid", "low"}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].Name, name)
		}
	}

	// the input keeps its order
	if evals[0].Name != "low" || evals[2].Name != "mid" {
		t.Errorf("input slice was reordered: %+v", evals)
	}
}

func TestRankTieBreaks(t *testing.T) {
	evals := []Evaluation{
		eval("bbb", 6.5, 4),
		eval("aaa", 6.5, 4),
		eval("popular", 6.5, 8),
	}

	ranked := Rank(evals)

	// same composite: higher popularity step first, then name
	want := []string{"popular", "aaa", "bbb"}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].Name, name)
		}
	}
}

func TestRankErrorRecordsSinkToBottom(t *testing.T) {
	evals := []Evaluation{
		{Name: "broken", Error: "fetch failed"},
		eval("fine", 5.5, 2),
	}

	ranked := Rank(evals)
	if ranked[0].Name != "fine" || ranked[1].Name != "broken" {
		t.Errorf("error records should rank below scored ones: %+v", ranked)
	}
}

func TestRecommend(t *testing.T) {
	evals := []Evaluation{
		eval("runner-up", 6.1, 4),
		eval("winner", 7.9, 6),
		eval("loser", 4.9, 2),
	}

	got, ok := Recommend(evals)
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if got.Name != "winner" {
		t.Errorf("recommended %q, want 'winner'", got.Name)
	}
}

func TestRecommendThresholdBoundary(t *testing.T) {
	got, ok := Recommend([]Evaluation{eval("edge", 5.0, 2)})
	if !ok || got.Name != "edge" {
		t.Errorf("composite exactly at the threshold should qualify, got ok=%v", ok)
	}

	if _, ok := Recommend([]Evaluation{eval("short", 4.9, 2)}); ok {
		t.Error("composite below the threshold should not qualify")
	}
}

func TestRecommendSkipsDeprecatedAndErrors(t *testing.T) {
	deprecated := eval("old-favorite", 9.0, 10)
	deprecated.Deprecated = true

	evals := []Evaluation{
		deprecated,
		{Name: "broken", Error: "fetch failed", Score: score.Record{Composite: 0}},
		eval("solid", 6.2, 4),
	}

	got, ok := Recommend(evals)
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if got.Name != "solid" {
		t.Errorf("recommended %q, want 'solid'", got.Name)
	}
}

func TestRecommendNothingQualifies(t *testing.T) {
	deprecated := eval("old", 8.0, 8)
	deprecated.Deprecated = true

	evals := []Evaluation{
		deprecated,
		eval("weak", 3.1, 1),
	}

	if got, ok := Recommend(evals); ok {
		t.Errorf("expected no recommendation, got %q", got.Name)
	}

	if _, ok := Recommend(nil); ok {
		t.Error("empty input should not recommend")
	}
}

func TestRecommendAbove(t *testing.T) {
	evals := []Evaluation{
		eval("decent", 6.0, 4),
		eval("great", 7.5, 6),
	}

	got, ok := RecommendAbove(evals, 7.0)
	if !ok || got.Name != "great" {
		t.Errorf("RecommendAbove(7.0) = %q, ok=%v; want 'great'", got.Name, ok)
	}

	if _, ok := RecommendAbove(evals, 9.0); ok {
		t.Error("no candidate reaches 9.0")
	}
}
