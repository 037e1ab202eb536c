package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/repository"
)

type memPodcasts struct {
	mu      sync.Mutex
	rows    []models.Podcast
	clock   time.Time
	inserts int
	// searches records which index was queried, in order.
	searches []string
}

func newMemPodcasts() *memPodcasts {
	return &memPodcasts{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memPodcasts) seed(p models.Podcast) models.Podcast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(p)
}

func (m *memPodcasts) insertLocked(p models.Podcast) models.Podcast {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.clock = m.clock.Add(time.Minute)
	p.CreatedAt = m.clock
	m.rows = append(m.rows, p)
	return p
}

func (m *memPodcasts) Create(ctx context.Context, p *models.Podcast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	*p = m.insertLocked(*p)
	return nil
}

func (m *memPodcasts) searchLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searches...)
}

func (m *memPodcasts) resetSearchLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = nil
}

func (m *memPodcasts) find(id uuid.UUID) int {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memPodcasts) GetByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	p := m.rows[i]
	return &p, nil
}

func (m *memPodcasts) snapshot() []models.Podcast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Podcast, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *memPodcasts) ListNewest(ctx context.Context) ([]models.Podcast, error) {
	out := m.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPodcasts) ListByViews(ctx context.Context, limit int) ([]models.Podcast, error) {
	out := m.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPodcasts) ListByVoiceType(ctx context.Context, voice models.VoiceType, excludeID uuid.UUID) ([]models.Podcast, error) {
	out := []models.Podcast{}
	for _, p := range m.snapshot() {
		if p.VoiceType == voice && p.ID != excludeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPodcasts) ListByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error) {
	out := []models.Podcast{}
	for _, p := range m.snapshot() {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPodcasts) Search(ctx context.Context, index repository.SearchIndex, term string, limit int) ([]models.Podcast, error) {
	m.mu.Lock()
	m.searches = append(m.searches, index.Name)
	m.mu.Unlock()

	term = strings.ToLower(term)
	out := []models.Podcast{}
	for _, p := range m.snapshot() {
		var field string
		switch index {
		case repository.SearchAuthor:
			field = p.Author
		case repository.SearchTitle:
			field = p.PodcastTitle
		case repository.SearchBody:
			field = p.PodcastDescription
		}
		if strings.Contains(strings.ToLower(field), term) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memPodcasts) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Podcast, error) {
	m.mu.Lock()
	i := m.find(id)
	if i < 0 {
		m.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	p := &m.rows[i]
	for k, v := range updates {
		switch k {
		case "podcast_title":
			p.PodcastTitle = v.(string)
		case "podcast_description":
			p.PodcastDescription = v.(string)
		case "voice_type":
			p.VoiceType = v.(models.VoiceType)
		case "voice_prompt":
			p.VoicePrompt = v.(string)
		case "views":
			p.Views = v.(int)
		case "audio_duration":
			p.AudioDuration = v.(float64)
		}
	}
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *memPodcasts) IncrementViews(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.rows[i].Views++
	return nil
}

func (m *memPodcasts) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return nil
}

type memUsers struct {
	byEmail map[string]*models.User
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{byEmail: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		m.byEmail[u.Email] = &u
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, u *models.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// recordingBlobs logs every call so ordering can be asserted.
type recordingBlobs struct {
	calls     []string
	failOn    string
	uploads   map[string][]byte
	existing  map[string]bool
	deleteErr error
}

func newRecordingBlobs() *recordingBlobs {
	return &recordingBlobs{uploads: map[string][]byte{}, existing: map[string]bool{}}
}

func (b *recordingBlobs) Upload(ctx context.Context, storageID string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	b.calls = append(b.calls, "upload:"+storageID)
	b.uploads[storageID] = buf
	b.existing[storageID] = true
	return nil
}

func (b *recordingBlobs) URL(ctx context.Context, storageID string) (string, error) {
	b.calls = append(b.calls, "url:"+storageID)
	if !b.existing[storageID] {
		return "", nil
	}
	return "https://cdn.test/" + storageID, nil
}

func (b *recordingBlobs) Delete(ctx context.Context, storageID string) error {
	b.calls = append(b.calls, "delete:"+storageID)
	if storageID == b.failOn {
		return b.deleteErr
	}
	delete(b.existing, storageID)
	return nil
}
