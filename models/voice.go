package models

type VoiceType string

const (
	VoiceAlloy   VoiceType = "alloy"
	VoiceShimmer VoiceType = "shimmer"
	VoiceNova    VoiceType = "nova"
	VoiceEcho    VoiceType = "echo"
	VoiceFable   VoiceType = "fable"
	VoiceOnyx    VoiceType = "onyx"
	VoiceAsh     VoiceType = "ash"
	VoiceCoral   VoiceType = "coral"
	VoiceSage    VoiceType = "sage"
)

// VoiceTypes lists every voice a podcast may be narrated with.
var VoiceTypes = []VoiceType{
	VoiceAlloy, VoiceShimmer, VoiceNova, VoiceEcho, VoiceFable,
	VoiceOnyx, VoiceAsh, VoiceCoral, VoiceSage,
}

func (v VoiceType) Valid() bool {
	for _, known := range VoiceTypes {
		if v == known {
			return true
		}
	}
	return false
}
