package analysis

// Stage names the steps of the pipeline walk.
type Stage string

const (
	StageEntry     Stage = "entry"
	StageSearch    Stage = "search"
	StageMemeName  Stage = "meme_name"
	StageHumor     Stage = "explain_humor"
	StagePlatform  Stage = "platform_detection"
	StagePoster    Stage = "poster_identification"
	StageSentiment Stage = "sentiment"
	StagePolitical Stage = "political"
	StageOutrage   Stage = "outrage"
	StageAssemble  Stage = "assemble"
	StageDone      Stage = "done"
)

// Route picks the branch that follows the entry stage. Total over every
// category value: anything outside the three enrichment branches falls
// through to the tail.
func Route(category Category) Stage {
	switch category {
	case CategoryArticle, CategoryFacts:
		return StageSearch
	case CategoryMeme:
		return StageMemeName
	case CategorySocialMedia:
		return StagePlatform
	default:
		return StageSentiment
	}
}

// nextStage walks the fixed topology. The only data-dependent transition is
// the branch after the entry stage.
func nextStage(current Stage, category Category) Stage {
	switch current {
	case StageEntry:
		return Route(category)
	case StageSearch:
		return StageSentiment
	case StageMemeName:
		return StageHumor
	case StageHumor:
		return StageSentiment
	case StagePlatform:
		return StagePoster
	case StagePoster:
		return StageSentiment
	case StageSentiment:
		return StagePolitical
	case StagePolitical:
		return StageOutrage
	case StageOutrage:
		return StageAssemble
	default:
		return StageDone
	}
}
