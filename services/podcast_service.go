package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/repository"
	"github.com/vnkhanh/podcastr-backend/storage"
)

const (
	trendingLimit = 8
	searchLimit   = 10
)

// Thứ tự ưu tiên khi tìm kiếm: tác giả, tiêu đề, rồi mô tả
var searchCascade = []repository.SearchIndex{
	repository.SearchAuthor,
	repository.SearchTitle,
	repository.SearchBody,
}

// Identity is the authenticated caller as resolved by the auth middleware.
type Identity struct {
	UserID string
	Email  string
}

type CreatePodcastInput struct {
	PodcastTitle       string           `json:"podcast_title"`
	PodcastDescription string           `json:"podcast_description"`
	VoiceType          models.VoiceType `json:"voice_type"`
	VoicePrompt        string           `json:"voice_prompt"`
	AudioURL           string           `json:"audio_url"`
	AudioStorageID     string           `json:"audio_storage_id"`
	ImagePrompt        *string          `json:"image_prompt"`
	ImageURL           string           `json:"image_url"`
	ImageStorageID     string           `json:"image_storage_id"`
	Views              int              `json:"views"`
	// Ignored, a new podcast always starts with a zero duration.
	AudioDuration float64 `json:"audio_duration"`
}

// UpdatePodcastInput is a partial patch; nil fields are left untouched.
type UpdatePodcastInput struct {
	PodcastTitle       *string           `json:"podcast_title"`
	PodcastDescription *string           `json:"podcast_description"`
	VoiceType          *models.VoiceType `json:"voice_type"`
	VoicePrompt        *string           `json:"voice_prompt"`
	AudioURL           *string           `json:"audio_url"`
	AudioStorageID     *string           `json:"audio_storage_id"`
	ImagePrompt        *string           `json:"image_prompt"`
	ImageURL           *string           `json:"image_url"`
	ImageStorageID     *string           `json:"image_storage_id"`
	Views              *int              `json:"views"`
	AudioDuration      *float64          `json:"audio_duration"`
}

type AuthorPodcasts struct {
	Podcasts  []models.Podcast `json:"podcasts"`
	Listeners int64            `json:"listeners"`
}

type PodcastService struct {
	podcasts repository.PodcastRepository
	users    repository.UserRepository
	blobs    storage.BlobStore

	mu        sync.RWMutex
	listeners []func()
}

func NewPodcastService(podcasts repository.PodcastRepository, users repository.UserRepository, blobs storage.BlobStore) *PodcastService {
	return &PodcastService{podcasts: podcasts, users: users, blobs: blobs}
}

// OnChange registers fn to be called after every successful mutation.
func (s *PodcastService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *PodcastService) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn()
	}
}

// GetPodcastByID returns nil without error when the podcast does not exist.
func (s *PodcastService) GetPodcastByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	podcast, err := s.podcasts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return podcast, err
}

func (s *PodcastService) GetAllPodcasts(ctx context.Context) ([]models.Podcast, error) {
	return s.podcasts.ListNewest(ctx)
}

func (s *PodcastService) GetTrendingPodcasts(ctx context.Context) ([]models.Podcast, error) {
	return s.podcasts.ListByViews(ctx, trendingLimit)
}

// GetPodcastByVoiceType lists the other podcasts narrated with the same voice as podcastID.
func (s *PodcastService) GetPodcastByVoiceType(ctx context.Context, podcastID uuid.UUID) ([]models.Podcast, error) {
	reference, err := s.podcasts.GetByID(ctx, podcastID)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.Podcast{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.podcasts.ListByVoiceType(ctx, reference.VoiceType, reference.ID)
}

func (s *PodcastService) GetPodcastByAuthorID(ctx context.Context, authorID string) (*AuthorPodcasts, error) {
	podcasts, err := s.podcasts.ListByAuthorID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	var listeners int64
	for _, p := range podcasts {
		listeners += int64(p.Views)
	}
	return &AuthorPodcasts{Podcasts: podcasts, Listeners: listeners}, nil
}

// GetPodcastBySearch returns the first non-empty result of the author, title and
// description indexes. An empty term lists everything.
func (s *PodcastService) GetPodcastBySearch(ctx context.Context, term string) ([]models.Podcast, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.GetAllPodcasts(ctx)
	}

	for _, index := range searchCascade {
		found, err := s.podcasts.Search(ctx, index, term, searchLimit)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return []models.Podcast{}, nil
}

func (s *PodcastService) resolveUser(ctx context.Context, identity *Identity) (*models.User, error) {
	if identity == nil || identity.Email == "" {
		return nil, ErrAuthenticationRequired
	}
	user, err := s.users.GetByEmail(ctx, identity.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PodcastService) CreatePodcast(ctx context.Context, identity *Identity, in CreatePodcastInput) (*models.Podcast, error) {
	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.PodcastTitle) == "" || strings.TrimSpace(in.PodcastDescription) == "" {
		return nil, invalid("podcast_title and podcast_description are required")
	}
	if !in.VoiceType.Valid() {
		return nil, invalid("unknown voice_type %q", in.VoiceType)
	}
	if in.Views < 0 {
		return nil, invalid("views must not be negative")
	}

	podcast := &models.Podcast{
		PodcastTitle:       in.PodcastTitle,
		PodcastDescription: in.PodcastDescription,
		VoiceType:          in.VoiceType,
		VoicePrompt:        in.VoicePrompt,
		AudioURL:           in.AudioURL,
		AudioStorageID:     in.AudioStorageID,
		ImagePrompt:        in.ImagePrompt,
		ImageURL:           in.ImageURL,
		ImageStorageID:     in.ImageStorageID,
		Views:              in.Views,
		AudioDuration:      0,
		UserID:             user.ID,
		Author:             user.Name,
		AuthorID:           user.ExternalID,
		AuthorImageURL:     user.ImageURL,
	}
	if err := s.podcasts.Create(ctx, podcast); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"podcast_id": podcast.ID, "user_id": user.ID}).Info("podcast created")
	s.notify()
	return podcast, nil
}

// UpdatePodcast patches any caller-supplied field. The owner is not checked.
func (s *PodcastService) UpdatePodcast(ctx context.Context, identity *Identity, id uuid.UUID, in UpdatePodcastInput) (*models.Podcast, error) {
	if _, err := s.resolveUser(ctx, identity); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.PodcastTitle != nil {
		if strings.TrimSpace(*in.PodcastTitle) == "" {
			return nil, invalid("podcast_title must not be empty")
		}
		updates["podcast_title"] = *in.PodcastTitle
	}
	if in.PodcastDescription != nil {
		if strings.TrimSpace(*in.PodcastDescription) == "" {
			return nil, invalid("podcast_description must not be empty")
		}
		updates["podcast_description"] = *in.PodcastDescription
	}
	if in.VoiceType != nil {
		if !in.VoiceType.Valid() {
			return nil, invalid("unknown voice_type %q", *in.VoiceType)
		}
		updates["voice_type"] = *in.VoiceType
	}
	if in.VoicePrompt != nil {
		updates["voice_prompt"] = *in.VoicePrompt
	}
	if in.AudioURL != nil {
		updates["audio_url"] = *in.AudioURL
	}
	if in.AudioStorageID != nil {
		updates["audio_storage_id"] = *in.AudioStorageID
	}
	if in.ImagePrompt != nil {
		updates["image_prompt"] = *in.ImagePrompt
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.ImageStorageID != nil {
		updates["image_storage_id"] = *in.ImageStorageID
	}
	if in.Views != nil {
		if *in.Views < 0 {
			return nil, invalid("views must not be negative")
		}
		updates["views"] = *in.Views
	}
	if in.AudioDuration != nil {
		if *in.AudioDuration < 0 {
			return nil, invalid("audio_duration must not be negative")
		}
		updates["audio_duration"] = *in.AudioDuration
	}

	if len(updates) == 0 {
		podcast, err := s.podcasts.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPodcastNotFound
		}
		return podcast, err
	}

	podcast, err := s.podcasts.Update(ctx, id, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPodcastNotFound
	}
	if err != nil {
		return nil, err
	}

	s.notify()
	return podcast, nil
}

// DeletePodcast removes the audio blob, the image blob and then the record.
// A failure stops the sequence; earlier steps are not rolled back.
func (s *PodcastService) DeletePodcast(ctx context.Context, id uuid.UUID) error {
	podcast, err := s.podcasts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPodcastNotFound
	}
	if err != nil {
		return err
	}

	logger := log.WithField("podcast_id", id)
	for _, storageID := range []string{podcast.AudioStorageID, podcast.ImageStorageID} {
		if storageID == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, storageID); err != nil {
			logger.WithError(err).WithField("storage_id", storageID).Error("delete podcast blob failed")
			return errors.Wrapf(err, "delete blob %s", storageID)
		}
	}

	if err := s.podcasts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPodcastNotFound
		}
		logger.WithError(err).Error("delete podcast record failed")
		return err
	}

	logger.Info("podcast deleted")
	s.notify()
	return nil
}

func (s *PodcastService) UpdatePodcastViews(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	if _, err := s.podcasts.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, err
	}

	if err := s.podcasts.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPodcastNotFound
		}
		return nil, err
	}

	podcast, err := s.podcasts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify()
	return podcast, nil
}

// GetURL resolves a storage id to a URL, or "" if the blob is gone.
func (s *PodcastService) GetURL(ctx context.Context, storageID string) (string, error) {
	if storageID == "" {
		return "", nil
	}
	return s.blobs.URL(ctx, storageID)
}
