package analysis

// Response is the external shape of one completed analysis.
type Response struct {
	Filename            string      `json:"filename"`
	Text                string      `json:"text"`
	ContentType         string      `json:"content_type"`
	SearchResults       string      `json:"search_results"`
	MemeName            string      `json:"meme_name"`
	ExplainHumor        string      `json:"explain_humor"`
	SocialMediaPlatform string      `json:"social_media_platform"`
	PosterName          string      `json:"poster_name"`
	Sentiment           string      `json:"sentiment"`
	IsPolitical         string      `json:"is_political"`
	IsOutrage           string      `json:"is_outrage"`
	Usage               UsageRecord `json:"usage"`
	AnalyzedBy          string      `json:"analyzed_by"`
}

// ToResponse adapts the internal record to the wire shape. Booleans render
// as YES/NO strings.
func ToResponse(rec Record, filename, analyzedBy string) Response {
	return Response{
		Filename:            filename,
		Text:                rec.ExtractedText,
		ContentType:         string(rec.Category),
		SearchResults:       rec.SearchResults,
		MemeName:            rec.MemeName,
		ExplainHumor:        rec.HumorExplanation,
		SocialMediaPlatform: string(rec.Platform),
		PosterName:          rec.PosterName,
		Sentiment:           string(rec.Sentiment),
		IsPolitical:         yesNo(rec.IsPolitical),
		IsOutrage:           yesNo(rec.IsOutrage),
		Usage:               rec.Usage,
		AnalyzedBy:          analyzedBy,
	}
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
