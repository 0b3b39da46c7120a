// Package persona maps persona identifiers to text-styling and voice
// parameters applied uniformly to a turn's output.
//
// Lookup never fails: an unrecognised identifier resolves to the "default"
// entry. Persona configs are static; they are looked up, never mutated.
package persona

import "strings"

// Default is the persona used when the caller supplies no identifier or an
// unknown one.
const Default = "default"

// Config bundles the styling choices for one persona.
type Config struct {
	// Name is the persona identifier this config belongs to.
	Name string

	// VoiceID selects the synthesis voice.
	VoiceID string

	// PitchDelta shifts synthesis pitch relative to the voice default
	// (provider scale, negative is lower).
	PitchDelta int

	// RateDelta shifts speaking rate relative to the voice default
	// (provider scale, negative is slower).
	RateDelta int

	// Style is a free-text style hint passed to providers that support one.
	Style string

	// transform rewrites outbound text. Nil means the text is passed
	// through unchanged.
	transform func(string) string
}

// StyleText applies the persona's text transform to s. Personas without a
// transform return s unchanged.
func (c Config) StyleText(s string) string {
	if c.transform == nil {
		return s
	}
	return c.transform(s)
}

// Apology returns the persona-styled apology used when a skill handler or
// collaborator fails. hint, when non-empty, is appended as an actionable
// next step (e.g. a missing credential).
func (c Config) Apology(body string, hint string) string {
	var sb strings.Builder
	switch c.Name {
	case "pirate":
		sb.WriteString("Arrr! The winds be blowin' against us, matey! ")
	case "cowboy":
		sb.WriteString("Well, partner, we've hit a snag. ")
	case "robot":
		sb.WriteString("SYSTEM NOTICE. ")
	default:
		sb.WriteString("I'm sorry — ")
	}
	sb.WriteString(body)
	if hint != "" {
		sb.WriteString(" ")
		sb.WriteString(hint)
	}
	return c.StyleText(sb.String())
}

// registry holds every known persona, keyed by identifier.
// The voice ids and deltas mirror the original VoxAura voice table.
var registry = map[string]Config{
	Default: {
		Name:    Default,
		VoiceID: "en-US-natalie",
		Style:   "conversational",
	},
	"pirate": {
		Name:       "pirate",
		VoiceID:    "en-US-terrell",
		PitchDelta: -2,
		RateDelta:  -1,
		Style:      "gruff",
		transform:  pirateTransform,
	},
	"cowboy": {
		Name:       "cowboy",
		VoiceID:    "en-US-miles",
		PitchDelta: -1,
		RateDelta:  -1,
		Style:      "drawl",
		transform:  cowboyTransform,
	},
	"robot": {
		Name:       "robot",
		VoiceID:    "en-US-ken",
		PitchDelta: 1,
		RateDelta:  1,
		Style:      "flat",
		transform:  robotTransform,
	},
}

// Lookup resolves id to its [Config], falling back to the default persona
// when id is empty or unknown.
func Lookup(id string) Config {
	if c, ok := registry[strings.ToLower(strings.TrimSpace(id))]; ok {
		return c
	}
	return registry[Default]
}

// Known reports whether id names a registered persona.
func Known(id string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(id))]
	return ok
}

// pirateTransform bolts a nautical opener and closer onto text that does
// not already carry them. Handler-produced pirate text (weather reports,
// search results) arrives pre-styled and is left alone.
func pirateTransform(s string) string {
	if strings.Contains(s, "Arrr") || strings.Contains(s, "Ahoy") {
		return s
	}
	return "Arrr! " + s + " ⚓"
}

func cowboyTransform(s string) string {
	if strings.Contains(s, "partner") {
		return s
	}
	return s + " Happy trails, partner!"
}

// robotTransform strips exclamation softeners for a flat delivery.
func robotTransform(s string) string {
	return strings.ReplaceAll(s, "!", ".")
}
