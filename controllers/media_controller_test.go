package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/ws"
)

type mockMediaAPI struct {
	mock.Mock
}

func (m *mockMediaAPI) GenerateAudio(ctx context.Context, identity *services.Identity, in services.GenerateAudioInput) (*services.Asset, error) {
	args := m.Called(ctx, identity, in)
	a, _ := args.Get(0).(*services.Asset)
	return a, args.Error(1)
}

func (m *mockMediaAPI) UploadThumbnail(ctx context.Context, identity *services.Identity, image io.Reader, title string) (*services.Asset, error) {
	args := m.Called(ctx, identity, image, title)
	a, _ := args.Get(0).(*services.Asset)
	return a, args.Error(1)
}

func (m *mockMediaAPI) Upload(ctx context.Context, identity *services.Identity, data io.Reader, filename, contentType string) (*services.Asset, error) {
	args := m.Called(ctx, identity, data, filename, contentType)
	a, _ := args.Get(0).(*services.Asset)
	return a, args.Error(1)
}

func (m *mockMediaAPI) GenerateScript(ctx context.Context, identity *services.Identity, title, description string) (string, error) {
	args := m.Called(ctx, identity, title, description)
	return args.String(0), args.Error(1)
}

func (m *mockMediaAPI) PromptFromDocument(ctx context.Context, identity *services.Identity, filename string, document io.Reader) (string, error) {
	args := m.Called(ctx, identity, filename, document)
	return args.String(0), args.Error(1)
}

func multipartRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func setupMediaRouter(api MediaAPI) *gin.Engine {
	mc := NewMediaController(api)
	r := gin.New()
	r.Use(withIdentity("alice@example.com"))
	r.POST("/api/generate/audio", mc.GenerateAudio)
	r.POST("/api/generate/thumbnail", mc.GenerateThumbnail)
	r.POST("/api/generate/script", mc.GenerateScript)
	r.POST("/api/generate/prompt-from-document", mc.PromptFromDocument)
	r.POST("/api/storage/upload", mc.Upload)
	return r
}

func TestGenerateAudioHandler(t *testing.T) {
	api := new(mockMediaAPI)
	api.On("GenerateAudio", mock.Anything, mock.Anything, services.GenerateAudioInput{
		VoiceType: models.VoiceEcho, VoicePrompt: "hi", PodcastTitle: "Go",
	}).Return(&services.Asset{StorageID: "audio/go.mp3", URL: "https://cdn.test/audio/go.mp3", Duration: 2.5}, nil)

	w := do(setupMediaRouter(api), http.MethodPost, "/api/generate/audio", gin.H{
		"voice_type": "echo", "voice_prompt": "hi", "podcast_title": "Go",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"duration":2.5`)
	api.AssertExpectations(t)
}

func TestGenerateAudioUnavailable(t *testing.T) {
	api := new(mockMediaAPI)
	api.On("GenerateAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil, services.ErrGeneratorUnavailable)

	w := do(setupMediaRouter(api), http.MethodPost, "/api/generate/audio", gin.H{"voice_type": "echo", "voice_prompt": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestThumbnailAndUploadHandlers(t *testing.T) {
	api := new(mockMediaAPI)
	api.On("UploadThumbnail", mock.Anything, mock.Anything, mock.Anything, "Cover").
		Return(&services.Asset{StorageID: "images/c.jpg"}, nil)
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything, "intro.mp3", "application/octet-stream").
		Return(&services.Asset{StorageID: "uploads/intro.mp3"}, nil)
	r := setupMediaRouter(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/generate/thumbnail", "c.png", []byte("png"), map[string]string{"podcast_title": "Cover"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "images/c.jpg")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/storage/upload", "intro.mp3", []byte("id3"), nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "uploads/intro.mp3")

	api.AssertExpectations(t)
}

func TestUploadWithoutFile(t *testing.T) {
	api := new(mockMediaAPI)
	w := do(setupMediaRouter(api), http.MethodPost, "/api/storage/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromptFromDocumentHandler(t *testing.T) {
	api := new(mockMediaAPI)
	api.On("PromptFromDocument", mock.Anything, mock.Anything, "notes.txt", mock.Anything).Return("hello", nil)
	api.On("GenerateScript", mock.Anything, mock.Anything, "Go", "").Return("script", nil)
	r := setupMediaRouter(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/generate/prompt-from-document", "notes.txt", []byte("hello"), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"voice_prompt":"hello"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/generate/script", gin.H{"podcast_title": "Go"})
	assert.JSONEq(t, `{"data":{"voice_prompt":"script"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/generate/script", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorFeedHandler(t *testing.T) {
	api := new(mockPodcastAPI)
	api.On("GetPodcastByAuthorID", mock.Anything, "user_alice").
		Return(&services.AuthorPodcasts{Podcasts: []models.Podcast{}, Listeners: 0}, nil)

	fc := NewFeedController(api, "https://podcastr.test")
	r := gin.New()
	r.GET("/rss/authors/:authorId", fc.AuthorFeed)

	w := do(r, http.MethodGet, "/rss/authors/user_alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, w.Body.String(), "<rss")
}

func TestHealthCheck(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	hc := NewHealthController(db, ws.NewHub(nil, 0))
	r := gin.New()
	r.GET("/health", hc.HealthCheck)
	r.GET("/ping", Ping)

	sqlMock.ExpectPing()
	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"clients":0`)

	sqlMock.ExpectPing().WillReturnError(assert.AnError)
	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
