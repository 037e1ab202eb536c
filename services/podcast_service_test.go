package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/models"
)

var alice = models.User{
	ID:         uuid.New(),
	Name:       "Alice",
	Email:      "alice@example.com",
	ExternalID: "user_alice",
	ImageURL:   "https://img.test/alice.png",
}

func newTestService() (*PodcastService, *memPodcasts, *recordingBlobs) {
	podcasts := newMemPodcasts()
	blobs := newRecordingBlobs()
	return NewPodcastService(podcasts, newMemUsers(alice), blobs), podcasts, blobs
}

func validInput() CreatePodcastInput {
	return CreatePodcastInput{
		PodcastTitle:       "Morning Go",
		PodcastDescription: "Daily Go news",
		VoiceType:          models.VoiceAlloy,
		VoicePrompt:        "Hello gophers",
		AudioStorageID:     "audio/a.mp3",
		ImageStorageID:     "images/a.jpg",
	}
}

func TestCreatePodcastRequiresIdentity(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.CreatePodcast(context.Background(), nil, validInput())
	assert.True(t, errors.Is(err, ErrAuthenticationRequired))

	_, err = svc.CreatePodcast(context.Background(), &Identity{}, validInput())
	assert.True(t, errors.Is(err, ErrAuthenticationRequired))

	assert.Equal(t, 0, repo.inserts)
}

func TestCreatePodcastUnknownUser(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.CreatePodcast(context.Background(), &Identity{Email: "ghost@example.com"}, validInput())
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, 0, repo.inserts)
}

func TestCreatePodcastSnapshotsAuthorAndZeroesDuration(t *testing.T) {
	svc, _, _ := newTestService()
	changed := 0
	svc.OnChange(func() { changed++ })

	in := validInput()
	in.AudioDuration = 321.5
	in.Views = 3

	podcast, err := svc.CreatePodcast(context.Background(), &Identity{Email: alice.Email}, in)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, podcast.ID)
	assert.Zero(t, podcast.AudioDuration)
	assert.Equal(t, 3, podcast.Views)
	assert.Equal(t, alice.ID, podcast.UserID)
	assert.Equal(t, "Alice", podcast.Author)
	assert.Equal(t, "user_alice", podcast.AuthorID)
	assert.Equal(t, alice.ImageURL, podcast.AuthorImageURL)
	assert.Equal(t, 1, changed)
}

func TestCreatePodcastValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	identity := &Identity{Email: alice.Email}

	cases := map[string]func(*CreatePodcastInput){
		"missing title":  func(in *CreatePodcastInput) { in.PodcastTitle = "  " },
		"unknown voice":  func(in *CreatePodcastInput) { in.VoiceType = "robot" },
		"negative views": func(in *CreatePodcastInput) { in.Views = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.CreatePodcast(context.Background(), identity, in)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
	assert.Equal(t, 0, repo.inserts)
}

func TestGetPodcastByIDAbsentIsNil(t *testing.T) {
	svc, _, _ := newTestService()

	podcast, err := svc.GetPodcastByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, podcast)
}

func TestGetAllPodcastsNewestFirst(t *testing.T) {
	svc, repo, _ := newTestService()
	first := repo.seed(models.Podcast{PodcastTitle: "first"})
	second := repo.seed(models.Podcast{PodcastTitle: "second"})

	all, err := svc.GetAllPodcasts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestGetTrendingPodcasts(t *testing.T) {
	svc, repo, _ := newTestService()
	for i := 0; i < 12; i++ {
		repo.seed(models.Podcast{PodcastTitle: fmt.Sprintf("p%d", i), Views: (i * 7) % 13})
	}

	trending, err := svc.GetTrendingPodcasts(context.Background())
	require.NoError(t, err)
	require.Len(t, trending, 8)
	for i := 1; i < len(trending); i++ {
		assert.GreaterOrEqual(t, trending[i-1].Views, trending[i].Views)
	}
}

func TestGetPodcastByVoiceTypeExcludesReference(t *testing.T) {
	svc, repo, _ := newTestService()
	ref := repo.seed(models.Podcast{VoiceType: models.VoiceNova})
	same := repo.seed(models.Podcast{VoiceType: models.VoiceNova})
	repo.seed(models.Podcast{VoiceType: models.VoiceEcho})

	similar, err := svc.GetPodcastByVoiceType(context.Background(), ref.ID)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, same.ID, similar[0].ID)
	for _, p := range similar {
		assert.NotEqual(t, ref.ID, p.ID)
	}

	unknown, err := svc.GetPodcastByVoiceType(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.NotNil(t, unknown)
}

func TestGetPodcastByAuthorIDSumsListeners(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.seed(models.Podcast{AuthorID: "user_alice", Views: 5})
	repo.seed(models.Podcast{AuthorID: "user_alice", Views: 10})
	repo.seed(models.Podcast{AuthorID: "user_alice", Views: 0})
	repo.seed(models.Podcast{AuthorID: "user_bob", Views: 99})

	result, err := svc.GetPodcastByAuthorID(context.Background(), "user_alice")
	require.NoError(t, err)
	assert.Len(t, result.Podcasts, 3)
	assert.EqualValues(t, 15, result.Listeners)

	none, err := svc.GetPodcastByAuthorID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, none.Podcasts)
	assert.Zero(t, none.Listeners)
}

func TestGetPodcastBySearch(t *testing.T) {
	t.Run("empty term lists everything", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.seed(models.Podcast{PodcastTitle: "a"})
		repo.seed(models.Podcast{PodcastTitle: "b"})

		all, err := svc.GetAllPodcasts(context.Background())
		require.NoError(t, err)
		for _, term := range []string{"", "   "} {
			found, err := svc.GetPodcastBySearch(context.Background(), term)
			require.NoError(t, err)
			assert.Equal(t, all, found)
		}
		assert.Empty(t, repo.searches)
	})

	t.Run("author match wins over title", func(t *testing.T) {
		svc, repo, _ := newTestService()
		byAuthor := repo.seed(models.Podcast{Author: "Jane", PodcastTitle: "Cooking"})
		repo.seed(models.Podcast{Author: "Bob", PodcastTitle: "Jane's story"})

		found, err := svc.GetPodcastBySearch(context.Background(), "Jane")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, byAuthor.ID, found[0].ID)
		assert.Equal(t, []string{"search_author"}, repo.searches)
	})

	t.Run("author then title then description", func(t *testing.T) {
		svc, repo, _ := newTestService()
		byAuthor := repo.seed(models.Podcast{Author: "Rustacean Radio", PodcastTitle: "Weekly", PodcastDescription: "systems"})
		byTitle := repo.seed(models.Podcast{Author: "Bob", PodcastTitle: "Rustacean diaries", PodcastDescription: "stories"})
		byBody := repo.seed(models.Podcast{Author: "Carol", PodcastTitle: "Evening", PodcastDescription: "a rustacean walks in"})
		ctx := context.Background()

		found, err := svc.GetPodcastBySearch(ctx, "rustacean")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, byAuthor.ID, found[0].ID)
		assert.Equal(t, []string{"search_author"}, repo.searchLog())

		require.NoError(t, svc.DeletePodcast(ctx, byAuthor.ID))
		repo.resetSearchLog()
		found, err = svc.GetPodcastBySearch(ctx, "rustacean")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, byTitle.ID, found[0].ID)
		assert.Equal(t, []string{"search_author", "search_title"}, repo.searchLog())

		require.NoError(t, svc.DeletePodcast(ctx, byTitle.ID))
		repo.resetSearchLog()
		found, err = svc.GetPodcastBySearch(ctx, "rustacean")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, byBody.ID, found[0].ID)
		assert.Equal(t, []string{"search_author", "search_title", "search_body"}, repo.searchLog())
	})

	t.Run("falls through to description", func(t *testing.T) {
		svc, repo, _ := newTestService()
		match := repo.seed(models.Podcast{Author: "Bob", PodcastTitle: "News", PodcastDescription: "all about kubernetes"})

		found, err := svc.GetPodcastBySearch(context.Background(), "kubernetes")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, match.ID, found[0].ID)
		assert.Equal(t, []string{"search_author", "search_title", "search_body"}, repo.searches)
	})

	t.Run("at most ten per index", func(t *testing.T) {
		svc, repo, _ := newTestService()
		for i := 0; i < 15; i++ {
			repo.seed(models.Podcast{PodcastTitle: fmt.Sprintf("golang %d", i)})
		}
		found, err := svc.GetPodcastBySearch(context.Background(), "golang")
		require.NoError(t, err)
		assert.Len(t, found, 10)
	})

	t.Run("no match", func(t *testing.T) {
		svc, _, _ := newTestService()
		found, err := svc.GetPodcastBySearch(context.Background(), "zzz")
		require.NoError(t, err)
		assert.Empty(t, found)
		assert.NotNil(t, found)
	})
}

func TestUpdatePodcastPatchesOnlyGivenFields(t *testing.T) {
	svc, repo, _ := newTestService()
	existing := repo.seed(models.Podcast{PodcastTitle: "old", PodcastDescription: "desc", VoiceType: models.VoiceAsh, UserID: uuid.New()})

	title := "new"
	updated, err := svc.UpdatePodcast(context.Background(), &Identity{Email: alice.Email}, existing.ID, UpdatePodcastInput{PodcastTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.PodcastTitle)
	assert.Equal(t, "desc", updated.PodcastDescription)
	assert.Equal(t, models.VoiceAsh, updated.VoiceType)
	assert.Equal(t, existing.UserID, updated.UserID)
}

func TestUpdatePodcastErrors(t *testing.T) {
	svc, repo, _ := newTestService()
	existing := repo.seed(models.Podcast{PodcastTitle: "old"})
	title := "new"

	_, err := svc.UpdatePodcast(context.Background(), nil, existing.ID, UpdatePodcastInput{PodcastTitle: &title})
	assert.True(t, errors.Is(err, ErrAuthenticationRequired))

	_, err = svc.UpdatePodcast(context.Background(), &Identity{Email: "ghost@example.com"}, existing.ID, UpdatePodcastInput{PodcastTitle: &title})
	assert.True(t, errors.Is(err, ErrUserNotFound))

	_, err = svc.UpdatePodcast(context.Background(), &Identity{Email: alice.Email}, uuid.New(), UpdatePodcastInput{PodcastTitle: &title})
	assert.True(t, errors.Is(err, ErrPodcastNotFound))

	negative := -4
	_, err = svc.UpdatePodcast(context.Background(), &Identity{Email: alice.Email}, existing.ID, UpdatePodcastInput{Views: &negative})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDeletePodcastMissingTouchesNoBlob(t *testing.T) {
	svc, _, blobs := newTestService()

	err := svc.DeletePodcast(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrPodcastNotFound))
	assert.Empty(t, blobs.calls)
}

func TestDeletePodcastOrder(t *testing.T) {
	svc, repo, blobs := newTestService()
	p := repo.seed(models.Podcast{AudioStorageID: "audio/x.mp3", ImageStorageID: "images/x.jpg"})
	changed := 0
	svc.OnChange(func() { changed++ })

	require.NoError(t, svc.DeletePodcast(context.Background(), p.ID))
	assert.Equal(t, []string{"delete:audio/x.mp3", "delete:images/x.jpg"}, blobs.calls)

	got, err := svc.GetPodcastByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, changed)
}

func TestDeletePodcastStopsOnBlobFailure(t *testing.T) {
	svc, repo, blobs := newTestService()
	p := repo.seed(models.Podcast{AudioStorageID: "audio/x.mp3", ImageStorageID: "images/x.jpg"})
	blobs.failOn = "images/x.jpg"
	blobs.deleteErr = errors.New("storage offline")

	err := svc.DeletePodcast(context.Background(), p.ID)
	require.Error(t, err)

	// audio is already gone and the record stays behind
	assert.Equal(t, []string{"delete:audio/x.mp3", "delete:images/x.jpg"}, blobs.calls)
	got, err := svc.GetPodcastByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUpdatePodcastViews(t *testing.T) {
	svc, repo, _ := newTestService()
	const start, n = 4, 25
	p := repo.seed(models.Podcast{Views: start})

	for i := 1; i <= n; i++ {
		updated, err := svc.UpdatePodcastViews(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, start+i, updated.Views)
		assert.GreaterOrEqual(t, updated.Views, 0)
	}

	got, err := svc.GetPodcastByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, start+n, got.Views)

	_, err = svc.UpdatePodcastViews(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrPodcastNotFound))
}

func TestGetURL(t *testing.T) {
	svc, _, blobs := newTestService()
	blobs.existing["audio/a.mp3"] = true

	url, err := svc.GetURL(context.Background(), "audio/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/audio/a.mp3", url)

	missing, err := svc.GetURL(context.Background(), "audio/gone.mp3")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
