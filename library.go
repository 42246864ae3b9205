package coachlens

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	libraryKey = "coachLensLibrary"
	historyKey = "quizHistory"

	maxLibraryItems = 50
	maxQuizHistory  = 10
	maxSimilarItems = 5
)

// topicLexicon is the fixed vocabulary the timeline uses to group and relate
// saved items. Coarse on purpose: it only has to beat "no grouping at all".
var topicLexicon = []string{
	"machine learning", "artificial intelligence", "neural networks", "deep learning",
	"programming", "javascript", "python", "react", "node.js",
	"mathematics", "statistics", "calculus", "algebra",
	"science", "physics", "chemistry", "biology",
	"business", "marketing", "finance", "economics",
	"technology", "software", "development", "coding",
}

// Library is the persisted timeline of study aids plus the quiz history,
// with topic-based grouping and similarity matching over saved items.
type Library struct {
	storage Storage
}

// NewLibrary creates a library over the given storage.
func NewLibrary(storage Storage) *Library {
	return &Library{storage: storage}
}

// SaveItem prepends an item to the library, assigning an ID and timestamp
// when missing, and trims the library to its size cap.
func (l *Library) SaveItem(item LibraryItem) (LibraryItem, error) {
	if item.ID == "" {
		item.ID = generateID(12)
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	items, err := l.Items()
	if err != nil {
		return LibraryItem{}, err
	}
	items = append([]LibraryItem{item}, items...)
	if len(items) > maxLibraryItems {
		items = items[:maxLibraryItems]
	}
	if err := l.save(libraryKey, items); err != nil {
		return LibraryItem{}, err
	}
	return item, nil
}

// Items returns all saved library items, newest first.
func (l *Library) Items() ([]LibraryItem, error) {
	var items []LibraryItem
	if err := l.load(libraryKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item returns one library item by ID.
func (l *Library) Item(id string) (LibraryItem, error) {
	items, err := l.Items()
	if err != nil {
		return LibraryItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return LibraryItem{}, fmt.Errorf("library item not found: %s", id)
}

// DeleteItem removes one library item by ID.
func (l *Library) DeleteItem(id string) error {
	items, err := l.Items()
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return l.save(libraryKey, kept)
}

// SaveQuizResult prepends a quiz result to the history, capped at the last
// few results.
func (l *Library) SaveQuizResult(result QuizResult) error {
	if result.Date.IsZero() {
		result.Date = time.Now()
	}
	history, err := l.QuizHistory()
	if err != nil {
		return err
	}
	history = append([]QuizResult{result}, history...)
	if len(history) > maxQuizHistory {
		history = history[:maxQuizHistory]
	}
	return l.save(historyKey, history)
}

// QuizHistory returns saved quiz results, newest first.
func (l *Library) QuizHistory() ([]QuizResult, error) {
	var history []QuizResult
	if err := l.load(historyKey, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (l *Library) save(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return l.storage.Set(key, data)
}

func (l *Library) load(key string, out interface{}) error {
	data, ok, err := l.storage.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// ExtractTopics returns the lexicon topics present in text, or a single
// "General" bucket when nothing matches.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, topic := range topicLexicon {
		if strings.Contains(lower, topic) {
			found = append(found, topic)
		}
	}
	if len(found) == 0 {
		return []string{"General"}
	}
	return found
}

// GroupByTopic buckets items by their primary topic and keeps only groups
// with more than one member; singleton groups carry no comparison value.
func (l *Library) GroupByTopic(items []LibraryItem) map[string][]LibraryItem {
	groups := make(map[string][]LibraryItem)
	for _, item := range items {
		topics := ExtractTopics(item.Title + " " + itemPreview(item))
		groups[topics[0]] = append(groups[topics[0]], item)
	}
	for topic, group := range groups {
		if len(group) < 2 {
			delete(groups, topic)
		}
	}
	return groups
}

// SimilarItem is a library item with its similarity score against a
// reference item.
type SimilarItem struct {
	LibraryItem
	Score int `json:"score"`
}

// FindSimilar scores every other saved item against current and returns the
// closest matches: same source host 3 points, 2 per shared topic, similar
// title 2, same type 1. Items below 2 points are dropped.
func (l *Library) FindSimilar(current LibraryItem, items []LibraryItem) []SimilarItem {
	currentTopics := ExtractTopics(current.Title + " " + itemPreview(current))

	var similar []SimilarItem
	for _, item := range items {
		if item.ID == current.ID {
			continue
		}
		score := 0
		if current.URL != "" && item.URL != "" && hostOf(current.URL) == hostOf(item.URL) {
			score += 3
		}
		itemTopics := ExtractTopics(item.Title + " " + itemPreview(item))
		for _, t := range currentTopics {
			for _, it := range itemTopics {
				if t == it {
					score += 2
				}
			}
		}
		if textSimilarity(current.Title, item.Title) > 0.3 {
			score += 2
		}
		if current.Type == item.Type {
			score++
		}
		if score >= 2 {
			similar = append(similar, SimilarItem{LibraryItem: item, Score: score})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool { return similar[i].Score > similar[j].Score })
	if len(similar) > maxSimilarItems {
		similar = similar[:maxSimilarItems]
	}
	return similar
}

// textSimilarity is the share of words the two texts have in common,
// relative to the longer one.
func textSimilarity(a, b string) float64 {
	wordsA := strings.Fields(strings.ToLower(a))
	wordsB := strings.Fields(strings.ToLower(b))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	common := 0
	for _, w := range wordsA {
		if _, ok := setB[w]; ok {
			common++
		}
	}

	longer := len(wordsA)
	if len(wordsB) > longer {
		longer = len(wordsB)
	}
	return float64(common) / float64(longer)
}

// hostOf extracts a normalized host name from a URL for same-source
// scoring.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// itemPreview returns a short text preview of an item for topic matching.
func itemPreview(item LibraryItem) string {
	if item.Type == ItemQuiz && len(item.Quiz) > 0 {
		questions := make([]string, len(item.Quiz))
		for i, q := range item.Quiz {
			questions[i] = q.Question
		}
		return truncateText(strings.Join(questions, " "), 200)
	}
	return truncateText(item.Content, 200)
}
