package models

import "fmt"

// Voice selects the synthesis voice. The valid set is fixed by the
// speech service; it is a configuration contract, not an internal
// invariant.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// Voices lists every voice accepted by the synthesis service.
var Voices = []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}

// ParseVoice validates a voice name against the fixed set.
func ParseVoice(s string) (Voice, error) {
	for _, v := range Voices {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown voice %q (valid: %v)", s, Voices)
}
