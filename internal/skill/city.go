package skill

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// gazetteer is the static list of city names used as an extraction last
// resort and as the reference set for fuzzy spelling correction.
var gazetteer = []string{
	"london", "paris", "berlin", "madrid", "rome", "amsterdam", "vienna",
	"new york", "los angeles", "chicago", "san francisco", "seattle",
	"boston", "miami", "toronto", "vancouver", "mexico city",
	"tokyo", "osaka", "seoul", "beijing", "shanghai", "singapore",
	"hong kong", "bangkok", "jakarta", "manila", "sydney", "melbourne",
	"auckland", "dubai", "istanbul", "cairo", "lagos", "nairobi",
	"cape town", "johannesburg", "moscow", "sao paulo", "buenos aires",
	"delhi", "mumbai", "bangalore", "kolkata", "chennai", "hyderabad",
	"pune", "ahmedabad", "jaipur", "lucknow",
}

// indianCities default to ",India" so the weather backends resolve them to
// the expected country when the user names just the city.
var indianCities = map[string]bool{
	"delhi": true, "mumbai": true, "bangalore": true, "kolkata": true,
	"chennai": true, "hyderabad": true, "pune": true, "ahmedabad": true,
	"jaipur": true, "lucknow": true,
}

// cityTemplates are tried in order; earlier templates are more specific.
var cityTemplates = []string{
	"weather in ", "weather at ", "weather for ",
	"temperature in ", "temperature at ",
	"forecast for ", "forecast in ",
	"humidity in ",
}

// cityStopWords end a city phrase when scanning tokens.
var cityStopWords = map[string]bool{
	"today": true, "tomorrow": true, "now": true, "right": true,
	"please": true, "like": true, "this": true, "currently": true,
}

// cityNoiseWords never belong to a city name.
var cityNoiseWords = map[string]bool{
	"weather": true, "temperature": true, "forecast": true,
	"city": true, "and": true, "the": true,
}

// ExtractCity pulls a city name out of a weather utterance. It tries phrase
// templates first, then tokens following a generic preposition, then a
// gazetteer scan. Returns "" when nothing plausible is found.
func ExtractCity(utterance string) string {
	lower := strings.ToLower(utterance)

	for _, tpl := range cityTemplates {
		if idx := strings.Index(lower, tpl); idx >= 0 {
			if city := takeCityPhrase(lower[idx+len(tpl):]); city != "" {
				return CleanCity(city)
			}
		}
	}

	// Generic "in <place>" / "at <place>" after a trigger word.
	tokens := strings.Fields(lower)
	for i, tok := range tokens {
		if (tok == "in" || tok == "at" || tok == "for") && i+1 < len(tokens) {
			if city := takeCityPhrase(strings.Join(tokens[i+1:], " ")); city != "" {
				return CleanCity(city)
			}
		}
	}

	// Last resort: any gazetteer city mentioned anywhere.
	for _, city := range gazetteer {
		if strings.Contains(lower, city) {
			return CleanCity(city)
		}
	}
	return ""
}

// takeCityPhrase collects up to three leading tokens until a stop or noise
// word, stripping trailing punctuation.
func takeCityPhrase(rest string) string {
	var parts []string
	for _, tok := range strings.Fields(rest) {
		tok = strings.Trim(tok, "?.!,;:")
		if tok == "" || cityStopWords[tok] || cityNoiseWords[tok] {
			break
		}
		parts = append(parts, tok)
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, " ")
}

// maxEditDistance bounds fuzzy correction so unrelated words are not
// rewritten into city names.
const maxEditDistance = 2

// CleanCity normalizes a candidate city name: noise words are dropped,
// close misspellings are corrected against the gazetteer, and well-known
// Indian cities gain their country qualifier.
func CleanCity(city string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(city)) {
		tok = strings.Trim(tok, "?.!,;:")
		if tok == "" || cityNoiseWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return ""
	}
	name := strings.Join(kept, " ")

	if corrected := correctSpelling(name); corrected != "" {
		name = corrected
	}
	if indianCities[name] {
		return title(name) + ",India"
	}
	return title(name)
}

// correctSpelling maps a near-miss (e.g. "dellhi", "new yourk") onto its
// gazetteer entry. Exact matches and short names are left alone.
func correctSpelling(name string) string {
	if len(name) < 5 {
		return ""
	}
	best, bestDist := "", maxEditDistance+1
	for _, city := range gazetteer {
		if city == name {
			return city
		}
		if d := matchr.DamerauLevenshtein(name, city); d < bestDist {
			best, bestDist = city, d
		}
	}
	if bestDist <= maxEditDistance {
		return best
	}
	return ""
}

// title upper-cases each word, preserving the ",Country" qualifier form.
func title(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
