// package services
package services

import (
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/vnkhanh/podcastr-backend/models"
)

// Google TTS giới hạn 5000 bytes mỗi request
const maxChunkBytes = 4500

// Synthesizer turns narration text into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice models.VoiceType) ([]byte, error)
}

var googleVoices = map[models.VoiceType]string{
	models.VoiceAlloy:   "en-US-Chirp3-HD-Aoede",
	models.VoiceShimmer: "en-US-Chirp3-HD-Kore",
	models.VoiceNova:    "en-US-Chirp3-HD-Leda",
	models.VoiceEcho:    "en-US-Chirp3-HD-Puck",
	models.VoiceFable:   "en-US-Chirp3-HD-Fenrir",
	models.VoiceOnyx:    "en-US-Chirp3-HD-Charon",
	models.VoiceAsh:     "en-US-Chirp3-HD-Orus",
	models.VoiceCoral:   "en-US-Chirp3-HD-Zephyr",
	models.VoiceSage:    "en-US-Chirp3-HD-Schedar",
}

type GoogleSynthesizer struct {
	client *texttospeech.Client
	rate   float64
}

// NewGoogleSynthesizer uses the service account file at credPath, or the
// application default credentials when credPath is empty.
func NewGoogleSynthesizer(ctx context.Context, credPath string) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if credPath != "" {
		opts = append(opts, option.WithCredentialsFile(credPath))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create text-to-speech client")
	}
	return &GoogleSynthesizer{client: client, rate: 1.0}, nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string, voice models.VoiceType) ([]byte, error) {
	if len(text) == 0 {
		return nil, invalid("voice_prompt is empty")
	}
	name, ok := googleVoices[voice]
	if !ok {
		return nil, invalid("unknown voice_type %q", voice)
	}

	chunks := splitTextToChunksByByte(text, maxChunkBytes)
	var allAudio []byte

	for idx, chunk := range chunks {
		log.WithFields(log.Fields{"chunk": idx + 1, "total": len(chunks), "bytes": len(chunk)}).Debug("synthesizing")

		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{
					Text: chunk,
				},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: "en-US",
				Name:         name,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  g.rate,
			},
		}

		resp, err := g.client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, errors.Wrapf(err, "synthesize chunk %d", idx+1)
		}
		allAudio = append(allAudio, resp.AudioContent...)
	}

	return allAudio, nil
}

// splitTextToChunksByByte chia text theo giới hạn byte + dấu câu
func splitTextToChunksByByte(text string, maxBytes int) []string {
	var chunks []string
	remaining := text

	for len(remaining) > 0 {
		if len(remaining) <= maxBytes {
			chunks = append(chunks, remaining)
			break
		}

		cutPos := maxBytes
		for i := cutPos; i > 0; i-- {
			c := remaining[i-1]
			if c == '.' || c == '!' || c == '?' || c == '\n' {
				cutPos = i
				break
			}
		}

		// không cắt giữa ký tự UTF-8
		for cutPos > 0 && cutPos < len(remaining) && (remaining[cutPos]&0xC0) == 0x80 {
			cutPos--
		}

		chunks = append(chunks, remaining[:cutPos])
		remaining = remaining[cutPos:]
	}

	return chunks
}
