package source

// Export internal functions and types for testing
var (
	// AuthHeaders is exported for testing header derivation
	AuthHeaders = authHeaders

	// FallbackQuery is exported for testing query fallback
	FallbackQuery = fallbackQuery

	// TweetTitle is exported for testing title truncation
	TweetTitle = tweetTitle
)

// TwitterSearchResponse is exported for testing the transform step on
// recorded payloads
type TwitterSearchResponse = twitterSearchResponse
type Tweet = tweet

// NewsAPIResponse is exported for testing the transform step
type NewsAPIResponse = newsAPIResponse
type NewsArticle = newsArticle
