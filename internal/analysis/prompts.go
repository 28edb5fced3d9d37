package analysis

import "fmt"

const entryPrompt = `Please analyze this image and provide:

1. OCR: Extract all the text you see in the image
2. CONTENT_TYPE: Classify the content as one of these categories:
   - MEME: Humorous images, jokes, memes (NOT social media screenshots)
   - ARTICLE: News articles, blog posts, formal written content, journalistic text
   - FACTS: Educational content, Wikipedia-style information, factual data, statistics
   - SOCIAL_MEDIA: Screenshots of social media posts (Twitter/X, Facebook, Instagram, Reddit, TikTok, etc.) with visible platform UI elements like usernames, avatars, timestamps, like/share buttons
   - OTHER: None of the above categories

Format your response exactly like this:
OCR: [extracted text here]
CONTENT_TYPE: [MEME/ARTICLE/FACTS/SOCIAL_MEDIA/OTHER]`

func memeNamePrompt(text string) string {
	return fmt.Sprintf(`Identify this meme format by analyzing both the visual structure and text content.

VISUAL ANALYSIS (Primary):
- Examine the image layout, composition, and visual elements
- Look for recognizable faces, objects, or scenes from popular meme templates
- Note text positioning (top/bottom, overlay style, speech bubbles, etc.)

TEXT ANALYSIS (Secondary):
- Analyze the text pattern and structure
- Look for characteristic phrases or text formats

COMMON MEME PATTERNS TO CONSIDER:
- Reaction memes (facial expressions + relatable text)
- Comparison memes (side-by-side formats like Drake pointing)
- Narrative memes (multi-panel storytelling)
- Advice/Impact font memes (bold white text on colored backgrounds)
- Modern Twitter/social media screenshot formats
- Classic image macro formats

Text from image: %s

RESPONSE FORMAT:
- If you can identify a specific, well-known meme format: respond with the exact meme name
- If it follows a recognizable pattern but isn't a specific named meme: respond with the pattern type (e.g., "Reaction Meme", "Comparison Meme", "Text Overlay Meme")
- If it's completely custom or unrecognizable: respond with "Custom Meme"

Respond with only the meme name or category, nothing else.`, text)
}

func humorPrompt(text, memeContext string) string {
	return fmt.Sprintf(`Explain why this meme is funny. Analyze the humor, cultural references, irony, and what makes it amusing%s.

Meme text: %s

Consider:
- What's the joke or punchline?
- Any cultural references or context needed?
- Is it relatable humor, absurdist, ironic, or another type?
- Any wordplay, visual gags, or timing involved?

Provide a concise but insightful explanation in 2-3 sentences.`, memeContext, text)
}

func platformPrompt(text string) string {
	return fmt.Sprintf(`Analyze this social media screenshot and identify the specific platform based on visual and textual cues.

PLATFORM-SPECIFIC CHARACTERISTICS:
- TWITTER/X: Blue bird icon, @ mentions, RT/retweet, hashtags, "Replying to", nested reply structure
- FACEBOOK: Blue theme, "Like", "Comment", "Share" buttons, reaction emojis
- INSTAGRAM: Square image format, heart icons, "liked by" text, stories indicators
- REDDIT: Upvote/downvote arrows, "r/" subreddit format, "u/" username format, karma points
- TIKTOK: Vertical video format, like/share/comment icons on right side
- LINKEDIN: Professional network styling, "connections", job titles
- DISCORD: Dark theme by default, # channel names, timestamps on right
- SNAPCHAT: Yellow branding, ghost icons, story indicators
- YOUTUBE: Play button, subscribe button, view counts, thumbs up/down
- TELEGRAM: Blue theme, @ usernames, forward arrows, channel indicators

TEXT CONTENT: %s

Respond with only the platform name: TWITTER, FACEBOOK, INSTAGRAM, REDDIT, TIKTOK, LINKEDIN, DISCORD, SNAPCHAT, YOUTUBE, TELEGRAM, or UNKNOWN if unclear.`, text)
}

func posterPrompt(text string, platform Platform) string {
	return fmt.Sprintf(`Identify the person or account who posted this social media content by analyzing the text and visual elements.

PLATFORM CONTEXT: %s

IDENTIFICATION STRATEGIES:
- Profile/avatar images: look for recognizable faces, logos, or profile pictures
- Username placement: usually near the top of posts
- Display names vs usernames: many platforms show both (e.g., "John Smith @johnsmith")
- Verification badges or account type indicators

TEXT CONTENT: %s

IDENTIFICATION CRITERIA:
- If it's a recognizable public figure: provide their real name
- If it's a brand/organization: provide the brand/organization name
- If it's a username/handle: provide the username
- If it's unclear or anonymous: respond with "Anonymous User" or "Unknown User"

IMPORTANT: Only identify the ORIGINAL POSTER of this content, not people mentioned in comments or replies.

Respond with only the poster's name or username, nothing else.`, platform, text)
}

func sentimentPrompt(text string) string {
	return fmt.Sprintf(`Analyze the sentiment of this text and classify it as one of: POSITIVE, NEGATIVE, NEUTRAL

Text: %s

Respond with only one word: POSITIVE, NEGATIVE, or NEUTRAL`, text)
}

func politicalPrompt(text string) string {
	return fmt.Sprintf(`Analyze if this text contains political content. Political content includes:
- References to politicians, political parties, elections
- Policy discussions, government actions
- Political ideologies, movements
- Current political events or controversies

Text: %s

Respond with only: YES or NO`, text)
}

func outragePrompt(text string) string {
	return fmt.Sprintf(`Analyze if this text is designed to provoke outrage, anger, or strong emotional reactions. Look for:
- Inflammatory language, extreme statements
- Divisive or polarizing content
- Content designed to make people angry
- Sensationalized claims or fear-mongering
- Clickbait-style emotional manipulation

Text: %s

Respond with only: YES or NO`, text)
}
