package services

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/storage"
)

// Asset is a freshly stored blob.
type Asset struct {
	StorageID string  `json:"storage_id"`
	URL       string  `json:"url"`
	Duration  float64 `json:"duration,omitempty"`
}

type GenerateAudioInput struct {
	VoiceType    models.VoiceType `json:"voice_type"`
	VoicePrompt  string           `json:"voice_prompt"`
	PodcastTitle string           `json:"podcast_title"`
}

// MediaService produces the assets a podcast is created from.
// synth and writer may be nil when the backend is not configured.
type MediaService struct {
	blobs  storage.BlobStore
	synth  Synthesizer
	writer ScriptWriter
}

func NewMediaService(blobs storage.BlobStore, synth Synthesizer, writer ScriptWriter) *MediaService {
	return &MediaService{blobs: blobs, synth: synth, writer: writer}
}

func requireIdentity(identity *Identity) error {
	if identity == nil || identity.Email == "" {
		return ErrAuthenticationRequired
	}
	return nil
}

func (m *MediaService) store(ctx context.Context, key string, data io.Reader, contentType string) (*Asset, error) {
	if err := m.blobs.Upload(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	url, err := m.blobs.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Asset{StorageID: key, URL: url}, nil
}

func (m *MediaService) GenerateAudio(ctx context.Context, identity *Identity, in GenerateAudioInput) (*Asset, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if m.synth == nil {
		return nil, ErrGeneratorUnavailable
	}
	if !in.VoiceType.Valid() {
		return nil, invalid("unknown voice_type %q", in.VoiceType)
	}
	if strings.TrimSpace(in.VoicePrompt) == "" {
		return nil, invalid("voice_prompt is required")
	}

	audio, err := m.synth.Synthesize(ctx, in.VoicePrompt, in.VoiceType)
	if err != nil {
		return nil, err
	}

	duration, err := MP3Duration(bytes.NewReader(audio))
	if err != nil {
		log.WithError(err).Warn("cannot measure generated audio")
		duration = 0
	}

	asset, err := m.store(ctx, storage.ObjectKey("audio", in.PodcastTitle, ".mp3"), bytes.NewReader(audio), "audio/mpeg")
	if err != nil {
		return nil, err
	}
	asset.Duration = duration
	return asset, nil
}

func (m *MediaService) UploadThumbnail(ctx context.Context, identity *Identity, image io.Reader, title string) (*Asset, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	thumb, err := NormalizeThumbnail(image)
	if err != nil {
		return nil, err
	}
	return m.store(ctx, storage.ObjectKey("images", title, ".jpg"), thumb, "image/jpeg")
}

// Upload stores a file as is, mirroring a pre-signed upload.
func (m *MediaService) Upload(ctx context.Context, identity *Identity, data io.Reader, filename, contentType string) (*Asset, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	return m.store(ctx, storage.ObjectKey("uploads", name, ext), data, contentType)
}

func (m *MediaService) GenerateScript(ctx context.Context, identity *Identity, title, description string) (string, error) {
	if err := requireIdentity(identity); err != nil {
		return "", err
	}
	if m.writer == nil {
		return "", ErrGeneratorUnavailable
	}
	if strings.TrimSpace(title) == "" {
		return "", invalid("podcast_title is required")
	}
	script, err := m.writer.WriteScript(ctx, title, description)
	if err != nil {
		return "", errors.Wrap(err, "draft script")
	}
	return script, nil
}

func (m *MediaService) PromptFromDocument(ctx context.Context, identity *Identity, filename string, document io.Reader) (string, error) {
	if err := requireIdentity(identity); err != nil {
		return "", err
	}
	text, err := ExtractPromptText(filename, document)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", invalid("document %q has no readable text", filename)
	}
	return text, nil
}
