package analysis

import "testing"

func TestRouteMapping(t *testing.T) {
	cases := []struct {
		category Category
		want     Stage
	}{
		{CategoryArticle, StageSearch},
		{CategoryFacts, StageSearch},
		{CategoryMeme, StageMemeName},
		{CategorySocialMedia, StagePlatform},
		{CategoryOther, StageSentiment},
		{CategoryError, StageSentiment},
	}
	for _, tc := range cases {
		if got := Route(tc.category); got != tc.want {
			t.Errorf("Route(%s) = %s, want %s", tc.category, got, tc.want)
		}
	}
}

func TestRouteIsTotal(t *testing.T) {
	weird := []Category{"", "GIBBERISH", "meme", "article ", "123", "💥"}
	for _, category := range weird {
		if got := Route(category); got != StageSentiment {
			t.Errorf("Route(%q) = %s, want default %s", category, got, StageSentiment)
		}
	}
}

func TestNextStageWalks(t *testing.T) {
	walk := func(category Category) []Stage {
		var stages []Stage
		stage := StageEntry
		for stage != StageDone {
			stages = append(stages, stage)
			stage = nextStage(stage, category)
		}
		return stages
	}

	memePath := walk(CategoryMeme)
	wantMeme := []Stage{StageEntry, StageMemeName, StageHumor, StageSentiment, StagePolitical, StageOutrage, StageAssemble}
	assertPath(t, "meme", memePath, wantMeme)

	articlePath := walk(CategoryArticle)
	wantArticle := []Stage{StageEntry, StageSearch, StageSentiment, StagePolitical, StageOutrage, StageAssemble}
	assertPath(t, "article", articlePath, wantArticle)

	socialPath := walk(CategorySocialMedia)
	wantSocial := []Stage{StageEntry, StagePlatform, StagePoster, StageSentiment, StagePolitical, StageOutrage, StageAssemble}
	assertPath(t, "social", socialPath, wantSocial)

	otherPath := walk(CategoryOther)
	wantOther := []Stage{StageEntry, StageSentiment, StagePolitical, StageOutrage, StageAssemble}
	assertPath(t, "other", otherPath, wantOther)
}

func assertPath(t *testing.T, name string, got, want []Stage) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s path %v, want %v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s path %v, want %v", name, got, want)
		}
	}
}

func TestNextStageIsTotal(t *testing.T) {
	if got := nextStage(Stage("bogus"), CategoryOther); got != StageDone {
		t.Fatalf("unknown stage should terminate, got %s", got)
	}
	if got := nextStage(StageDone, CategoryOther); got != StageDone {
		t.Fatalf("done should stay done, got %s", got)
	}
}
