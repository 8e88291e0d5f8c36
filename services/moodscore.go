package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/Amaan112005/mindmate/repository"
)

// Mood keyword lexicon used for both keyword detection and polarity
// scoring of journal text.
var moodKeywords = map[string][]string{
	"positive": {"happy", "joy", "excited", "grateful", "peaceful", "content", "proud", "calm", "hopeful", "relaxed"},
	"negative": {"sad", "angry", "anxious", "stressed", "lonely", "tired", "overwhelmed", "worried", "afraid", "hopeless"},
	"neutral":  {"okay", "fine", "normal", "average", "usual", "routine"},
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true,
	"can't": true, "cant": true, "won't": true, "wont": true, "isn't": true, "isnt": true,
}

var wordPattern = regexp.MustCompile(`[a-z']+`)

// AnalyzeMood scores journal text between -1 (very negative) and 1 (very
// positive) using the keyword lexicon. A negator immediately before a
// keyword flips its polarity.
func AnalyzeMood(text string) float64 {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}

	polarity := map[string]float64{}
	for _, w := range moodKeywords["positive"] {
		polarity[w] = 1
	}
	for _, w := range moodKeywords["negative"] {
		polarity[w] = -1
	}

	var score float64
	var hits int
	for i, word := range words {
		p, ok := polarity[word]
		if !ok {
			continue
		}
		if i > 0 && negators[words[i-1]] {
			p = -p
		}
		score += p
		hits++
	}

	if hits == 0 {
		return 0
	}
	return score / float64(hits)
}

// DetectKeywords returns the mood keywords present in the text, in
// lexicon order.
func DetectKeywords(text string) []string {
	textLower := strings.ToLower(text)
	words := map[string]bool{}
	for _, word := range wordPattern.FindAllString(textLower, -1) {
		words[word] = true
	}

	var found []string
	for _, group := range []string{"positive", "negative", "neutral"} {
		for _, keyword := range moodKeywords[group] {
			if words[keyword] {
				found = append(found, keyword)
			}
		}
	}
	return found
}

// FillDailyGaps expands sparse per-day points into a dense series from
// start to end inclusive, with nil values on days that have no entries.
func FillDailyGaps(points []repository.DailyPoint, start, end time.Time) []repository.DailyPoint {
	existing := make(map[string]repository.DailyPoint, len(points))
	for _, p := range points {
		existing[p.Date] = p
	}

	var filled []repository.DailyPoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if p, ok := existing[key]; ok {
			filled = append(filled, p)
		} else {
			filled = append(filled, repository.DailyPoint{Date: key})
		}
	}
	return filled
}
