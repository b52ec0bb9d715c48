package enums

import "fmt"

// Sentiment labels an analysis result.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

var validSentiments = []Sentiment{
	SentimentPositive,
	SentimentNegative,
	SentimentNeutral,
}

// String returns the literal string for the sentiment.
func (s Sentiment) String() string {
	return string(s)
}

// IsValid reports whether the sentiment is known.
func (s Sentiment) IsValid() bool {
	for _, candidate := range validSentiments {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSentiment converts raw input into a Sentiment.
func ParseSentiment(value string) (Sentiment, error) {
	for _, candidate := range validSentiments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sentiment %q", value)
}
