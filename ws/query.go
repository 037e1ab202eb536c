package ws

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

// PodcastQueries is the read side a subscription can watch.
type PodcastQueries interface {
	GetAllPodcasts(ctx context.Context) ([]models.Podcast, error)
	GetTrendingPodcasts(ctx context.Context) ([]models.Podcast, error)
	GetPodcastBySearch(ctx context.Context, term string) ([]models.Podcast, error)
	GetPodcastByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error)
	GetPodcastByVoiceType(ctx context.Context, podcastID uuid.UUID) ([]models.Podcast, error)
	GetPodcastByAuthorID(ctx context.Context, authorID string) (*services.AuthorPodcasts, error)
}

const (
	QueryAll      = "all"
	QueryTrending = "trending"
	QuerySearch   = "search"
	QueryByID     = "by_id"
	QuerySimilar  = "similar"
	QueryAuthor   = "author"
)

var errUnknownQuery = errors.New("unknown query")

type QueryArgs struct {
	PodcastID string `json:"podcast_id,omitempty"`
	AuthorID  string `json:"author_id,omitempty"`
	Search    string `json:"search,omitempty"`
}

// Evaluate runs one named query. An absent podcast yields a nil value, not an error.
func Evaluate(ctx context.Context, q PodcastQueries, query string, args QueryArgs) (interface{}, error) {
	switch query {
	case QueryAll:
		return q.GetAllPodcasts(ctx)
	case QueryTrending:
		return q.GetTrendingPodcasts(ctx)
	case QuerySearch:
		return q.GetPodcastBySearch(ctx, args.Search)
	case QueryByID, QuerySimilar:
		id, err := uuid.Parse(args.PodcastID)
		if err != nil {
			return nil, errors.Wrapf(services.ErrInvalidInput, "podcast_id %q", args.PodcastID)
		}
		if query == QuerySimilar {
			return q.GetPodcastByVoiceType(ctx, id)
		}
		podcast, err := q.GetPodcastByID(ctx, id)
		if err != nil || podcast == nil {
			// nil interface, không phải (*Podcast)(nil)
			return nil, err
		}
		return podcast, nil
	case QueryAuthor:
		return q.GetPodcastByAuthorID(ctx, args.AuthorID)
	default:
		return nil, errors.Wrap(errUnknownQuery, query)
	}
}
