// Package analysis implements the image content analysis pipeline: OCR and
// classification, category-specific enrichment stages, and a fixed
// sentiment/political/outrage tail.
package analysis

import (
	"strings"

	"imagelens-backend/internal/llm"
)

// NotApplicable marks a category-specific field whose branch was not taken.
const NotApplicable = "N/A"

// Category is the content classification produced by the entry stage.
type Category string

const (
	CategoryMeme        Category = "MEME"
	CategoryArticle     Category = "ARTICLE"
	CategoryFacts       Category = "FACTS"
	CategorySocialMedia Category = "SOCIAL_MEDIA"
	CategoryOther       Category = "OTHER"
	CategoryError       Category = "ERROR"
)

// NormalizeCategory maps a raw model answer onto the closed category set.
// Unrecognized answers become OTHER.
func NormalizeCategory(raw string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryMeme:
		return CategoryMeme
	case CategoryArticle:
		return CategoryArticle
	case CategoryFacts:
		return CategoryFacts
	case CategorySocialMedia:
		return CategorySocialMedia
	default:
		return CategoryOther
	}
}

// Platform is the social network identified for SOCIAL_MEDIA content.
type Platform string

const (
	PlatformTwitter       Platform = "TWITTER"
	PlatformFacebook      Platform = "FACEBOOK"
	PlatformInstagram     Platform = "INSTAGRAM"
	PlatformReddit        Platform = "REDDIT"
	PlatformTikTok        Platform = "TIKTOK"
	PlatformLinkedIn      Platform = "LINKEDIN"
	PlatformDiscord       Platform = "DISCORD"
	PlatformSnapchat      Platform = "SNAPCHAT"
	PlatformYouTube       Platform = "YOUTUBE"
	PlatformTelegram      Platform = "TELEGRAM"
	PlatformUnknown       Platform = "UNKNOWN"
	PlatformNotApplicable Platform = NotApplicable
)

var validPlatforms = map[Platform]struct{}{
	PlatformTwitter:   {},
	PlatformFacebook:  {},
	PlatformInstagram: {},
	PlatformReddit:    {},
	PlatformTikTok:    {},
	PlatformLinkedIn:  {},
	PlatformDiscord:   {},
	PlatformSnapchat:  {},
	PlatformYouTube:   {},
	PlatformTelegram:  {},
	PlatformUnknown:   {},
}

// NormalizePlatform maps a raw model answer onto the closed platform set.
// "X" is folded into TWITTER before validation so the alias survives.
func NormalizePlatform(raw string) Platform {
	candidate := Platform(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate == "X" {
		candidate = PlatformTwitter
	}
	if _, ok := validPlatforms[candidate]; ok {
		return candidate
	}
	return PlatformUnknown
}

// Sentiment is the emotional tone classification.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// NormalizeSentiment maps a raw model answer onto the sentiment set,
// defaulting to NEUTRAL.
func NormalizeSentiment(raw string) Sentiment {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// UsageRecord accumulates token and cost consumption across every capability
// call made while analyzing one image.
type UsageRecord struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	Error            string  `json:"error,omitempty"`
}

// Add folds one call's usage into the record.
func (u *UsageRecord) Add(usage llm.Usage) {
	u.PromptTokens += usage.PromptTokens
	u.CompletionTokens += usage.CompletionTokens
	u.TotalTokens += usage.TotalTokens
	u.TotalCost += usage.TotalCost
}

// Record is the single value threaded through the pipeline. Every field has a
// defined default so the final result is never partially constructed.
type Record struct {
	ExtractedText    string
	Category         Category
	SearchResults    string
	MemeName         string
	HumorExplanation string
	Platform         Platform
	PosterName       string
	Sentiment        Sentiment
	IsPolitical      bool
	IsOutrage        bool
	Usage            UsageRecord
}

// NewRecord returns a record with all category-specific fields at their
// not-applicable defaults and tail fields at their conservative defaults.
func NewRecord() Record {
	return Record{
		Category:         CategoryOther,
		SearchResults:    NotApplicable,
		MemeName:         NotApplicable,
		HumorExplanation: NotApplicable,
		Platform:         PlatformNotApplicable,
		PosterName:       NotApplicable,
		Sentiment:        SentimentNeutral,
	}
}
