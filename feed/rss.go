package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eduncan911/podcast"
	"github.com/pkg/errors"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

// 128 kbps, dùng để ước lượng kích thước file khi thiếu metadata
const bytesPerSecond = 16000

// BaseURL prefers the configured public URL and falls back to the request host.
func BaseURL(publicURL string, r *http.Request) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateAuthorRSS renders an iTunes compatible feed of one author's podcasts.
func GenerateAuthorRSS(baseURL, authorID string, result *services.AuthorPodcasts) (string, error) {
	author := authorID
	authorImage := ""
	var lastBuild time.Time
	for _, p := range result.Podcasts {
		if p.Author != "" {
			author = p.Author
		}
		if p.AuthorImageURL != "" {
			authorImage = p.AuthorImageURL
		}
		if p.CreatedAt.After(lastBuild) {
			lastBuild = p.CreatedAt
		}
	}

	feedURL := fmt.Sprintf("%s/rss/authors/%s", baseURL, authorID)
	p := podcast.New(
		fmt.Sprintf("%s on Podcastr", author),
		feedURL,
		fmt.Sprintf("Podcasts by %s, %s listeners so far.", author, humanize.Comma(result.Listeners)),
		&lastBuild, &lastBuild,
	)
	p.AddAuthor(author, "")
	p.AddImage(authorImage)
	p.IExplicit = "no"

	for _, episode := range result.Podcasts {
		if episode.AudioURL == "" {
			// chưa có audio thì không đưa vào feed
			continue
		}
		if _, err := p.AddItem(item(baseURL, episode)); err != nil {
			return "", errors.Wrapf(err, "add podcast %s to feed", episode.ID)
		}
	}

	return p.String(), nil
}

func item(baseURL string, episode models.Podcast) podcast.Item {
	pubDate := episode.CreatedAt
	it := podcast.Item{
		GUID:        episode.ID.String(),
		Title:       episode.PodcastTitle,
		Link:        fmt.Sprintf("%s/podcasts/%s", baseURL, episode.ID),
		Description: episode.PodcastDescription,
		PubDate:     &pubDate,
	}

	seconds := int64(episode.AudioDuration)
	size := seconds * bytesPerSecond
	if size <= 0 {
		size = 1
	}
	it.AddEnclosure(episode.AudioURL, podcast.MP3, size)
	it.AddSummary(fmt.Sprintf("%s · %s plays", episode.PodcastDescription, humanize.Comma(int64(episode.Views))))
	if seconds > 0 {
		it.AddDuration(seconds)
	}
	if episode.ImageURL != "" {
		it.AddImage(episode.ImageURL)
	}
	return it
}
