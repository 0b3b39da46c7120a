package skill

import (
	"strings"
)

// Match is the classifier's verdict for one utterance.
type Match struct {
	// Skill is the matched capability, or SkillNone.
	Skill Skill

	// Params are extracted parameters for the matched skill.
	Params map[string]string
}

// rule pairs a trigger predicate with a parameter extractor. Rules are
// evaluated in registration order and the first match short-circuits.
type rule struct {
	skill   Skill
	match   func(lower string) bool
	extract func(raw, lower string) map[string]string
}

// Classifier maps utterances to skills by an ordered keyword cascade.
// The priority (document before weather before search before study) is a
// fixed contract: when trigger sets overlap, the earlier skill always wins.
//
// Classifier is stateless and safe for concurrent use.
type Classifier struct {
	rules []rule
}

// NewClassifier creates a Classifier with the standard rule order.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{skill: SkillDocument, match: matchDocument, extract: extractDocument},
		{skill: SkillWeather, match: matchWeather, extract: extractWeather},
		{skill: SkillSearch, match: matchSearch, extract: extractSearch},
		{skill: SkillStudy, match: matchStudy, extract: extractStudy},
	}}
}

// Classify evaluates the rule cascade against utterance. It is a pure
// function of its input.
func (c *Classifier) Classify(utterance string) Match {
	raw := strings.TrimSpace(utterance)
	lower := strings.ToLower(raw)
	if lower == "" {
		return Match{Skill: SkillNone}
	}
	for _, r := range c.rules {
		if r.match(lower) {
			return Match{Skill: r.skill, Params: r.extract(raw, lower)}
		}
	}
	return Match{Skill: SkillNone}
}

// ── document ──────────────────────────────────────────────────────────

var documentKeywords = []string{
	"pdf", "document", "upload", "uploaded",
	"the file", "this file", "my file", "attached",
}

func matchDocument(lower string) bool {
	return containsAny(lower, documentKeywords)
}

func extractDocument(raw, lower string) map[string]string {
	params := map[string]string{}
	switch {
	case strings.Contains(lower, "question"):
		params["analysis_type"] = "questions"
	case strings.Contains(lower, "key point"):
		params["analysis_type"] = "key_points"
	case strings.Contains(lower, "concept"):
		params["analysis_type"] = "concepts"
	default:
		params["analysis_type"] = "summarize"
	}
	return params
}

// ── weather ───────────────────────────────────────────────────────────

var weatherKeywords = []string{
	"weather", "temperature", "forecast", "humidity",
	"raining", "snowing", "sunny", "cloudy", "windy",
	"how hot", "how cold",
}

func matchWeather(lower string) bool {
	// Document terms exclude a weather match so "what's the temperature
	// mentioned in the document" is not misrouted; the priority order
	// already guarantees this, the check keeps the rule self-contained.
	if containsAny(lower, documentKeywords) {
		return false
	}
	return containsAny(lower, weatherKeywords)
}

func extractWeather(raw, lower string) map[string]string {
	if city := ExtractCity(raw); city != "" {
		return map[string]string{"city": city}
	}
	return map[string]string{}
}

// ── search ────────────────────────────────────────────────────────────

var searchPhrases = []string{
	"search for", "look up", "what is", "who is", "tell me about",
}

// questionMinWords keeps bare fillers like "really?" out of the search
// skill; short questions read better as generic chat.
const questionMinWords = 4

func matchSearch(lower string) bool {
	if containsAny(lower, searchPhrases) {
		return true
	}
	return strings.HasSuffix(lower, "?") && len(strings.Fields(lower)) >= questionMinWords
}

func extractSearch(raw, lower string) map[string]string {
	query := raw
	for _, phrase := range searchPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			query = raw[idx+len(phrase):]
			break
		}
	}
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), "?"))
	if query == "" {
		query = strings.TrimSuffix(raw, "?")
	}
	return map[string]string{"query": query}
}

// ── study ─────────────────────────────────────────────────────────────

var studyKeywords = []string{
	"summarize", "explain", "quiz", "flashcard", "study",
}

func matchStudy(lower string) bool {
	return containsAny(lower, studyKeywords)
}

func extractStudy(raw, lower string) map[string]string {
	var matched string
	for _, kw := range studyKeywords {
		if strings.Contains(lower, kw) {
			matched = kw
			break
		}
	}
	topic := raw
	if matched != "" {
		if idx := strings.Index(lower, matched); idx >= 0 {
			topic = strings.TrimSpace(raw[idx+len(matched):])
		}
	}
	// Flashcard and open-ended study requests both resolve to quiz
	// generation; the remaining keywords are tasks in their own right.
	task := matched
	switch matched {
	case "study", "flashcard":
		task = "quiz"
	case "":
		task = "explain"
	}
	return map[string]string{"task": task, "topic": topic}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
