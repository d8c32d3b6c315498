package book

import (
	"fmt"
	"strings"
)

// Voice is a prebuilt narrator voice of the speech service.
type Voice string

const (
	VoiceKore   Voice = "Kore"
	VoiceZephyr Voice = "Zephyr"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceFenrir Voice = "Fenrir"
)

// DefaultVoice is used when a book does not choose one.
const DefaultVoice = VoiceKore

// VoiceOption describes a voice for pickers.
type VoiceOption struct {
	Name        Voice  `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var voices = []VoiceOption{
	{VoiceKore, "Classic Narrator", "Formal and authoritative Urdu"},
	{VoiceZephyr, "Poetic Soul", "Smooth and expressive delivery"},
	{VoicePuck, "Clear & Bright", "Modern, crisp articulation"},
	{VoiceCharon, "Deep Sage", "Rich, resonant tones for literature"},
	{VoiceFenrir, "Storyteller", "Warm and spirited narration"},
}

// Voices returns the voice catalogue in display order.
func Voices() []VoiceOption {
	out := make([]VoiceOption, len(voices))
	copy(out, voices)
	return out
}

// Valid reports whether v is in the catalogue.
func (v Voice) Valid() bool {
	for _, o := range voices {
		if o.Name == v {
			return true
		}
	}
	return false
}

// ParseVoice matches a voice name case-insensitively. An empty name yields
// DefaultVoice.
func ParseVoice(name string) (Voice, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultVoice, nil
	}
	for _, o := range voices {
		if strings.EqualFold(string(o.Name), name) {
			return o.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}
