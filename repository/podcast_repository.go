package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/podcastr-backend/models"
)

// ErrNotFound is returned when the targeted row does not exist.
var ErrNotFound = errors.New("record not found")

// SearchIndex names a full-text index over one podcast column.
type SearchIndex struct {
	Name   string
	Column string
}

var (
	SearchAuthor = SearchIndex{Name: "search_author", Column: "author"}
	SearchTitle  = SearchIndex{Name: "search_title", Column: "podcast_title"}
	SearchBody   = SearchIndex{Name: "search_body", Column: "podcast_description"}
)

// SearchIndexes is every index created by the migration.
var SearchIndexes = []SearchIndex{SearchAuthor, SearchTitle, SearchBody}

type PodcastRepository interface {
	Create(ctx context.Context, podcast *models.Podcast) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error)
	ListNewest(ctx context.Context) ([]models.Podcast, error)
	ListByViews(ctx context.Context, limit int) ([]models.Podcast, error)
	ListByVoiceType(ctx context.Context, voice models.VoiceType, excludeID uuid.UUID) ([]models.Podcast, error)
	ListByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error)
	Search(ctx context.Context, index SearchIndex, term string, limit int) ([]models.Podcast, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Podcast, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type podcastRepository struct {
	db *gorm.DB
}

func NewPodcastRepository(db *gorm.DB) PodcastRepository {
	return &podcastRepository{db: db}
}

func (r *podcastRepository) Create(ctx context.Context, podcast *models.Podcast) error {
	if podcast.ID == uuid.Nil {
		podcast.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(podcast).Error; err != nil {
		return errors.Wrap(err, "insert podcast")
	}
	return nil
}

func (r *podcastRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Podcast, error) {
	var podcast models.Podcast
	if err := r.db.WithContext(ctx).First(&podcast, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get podcast")
	}
	return &podcast, nil
}

func (r *podcastRepository) ListNewest(ctx context.Context) ([]models.Podcast, error) {
	podcasts := []models.Podcast{}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&podcasts).Error; err != nil {
		return nil, errors.Wrap(err, "list podcasts")
	}
	return podcasts, nil
}

// ListByViews sorts by views descending; equal view counts keep creation order.
func (r *podcastRepository) ListByViews(ctx context.Context, limit int) ([]models.Podcast, error) {
	podcasts := []models.Podcast{}
	if err := r.db.WithContext(ctx).
		Order("views DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&podcasts).Error; err != nil {
		return nil, errors.Wrap(err, "list podcasts by views")
	}
	return podcasts, nil
}

func (r *podcastRepository) ListByVoiceType(ctx context.Context, voice models.VoiceType, excludeID uuid.UUID) ([]models.Podcast, error) {
	podcasts := []models.Podcast{}
	if err := r.db.WithContext(ctx).
		Where("voice_type = ? AND id <> ?", voice, excludeID).
		Order("created_at ASC").
		Find(&podcasts).Error; err != nil {
		return nil, errors.Wrap(err, "list podcasts by voice type")
	}
	return podcasts, nil
}

func (r *podcastRepository) ListByAuthorID(ctx context.Context, authorID string) ([]models.Podcast, error) {
	podcasts := []models.Podcast{}
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at ASC").
		Find(&podcasts).Error; err != nil {
		return nil, errors.Wrap(err, "list podcasts by author")
	}
	return podcasts, nil
}

// Search runs a prefix full-text match against one index, best rank first.
func (r *podcastRepository) Search(ctx context.Context, index SearchIndex, term string, limit int) ([]models.Podcast, error) {
	podcasts := []models.Podcast{}
	query := PrefixQuery(term)
	if query == "" {
		return podcasts, nil
	}

	vector := "to_tsvector('simple', " + index.Column + ")"
	if err := r.db.WithContext(ctx).
		Where(vector+" @@ to_tsquery('simple', ?)", query).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(" + vector + ", to_tsquery('simple', ?)) DESC",
			Vars:               []interface{}{query},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&podcasts).Error; err != nil {
		return nil, errors.Wrapf(err, "search podcasts on %s", index.Name)
	}
	return podcasts, nil
}

func (r *podcastRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Podcast, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&models.Podcast{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "update podcast")
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *podcastRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Podcast{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return errors.Wrap(res.Error, "increment views")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *podcastRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Podcast{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete podcast")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// PrefixQuery turns free text into a to_tsquery expression where every word
// must match and the last word matches as a prefix ("hello wor" -> "hello & wor:*").
func PrefixQuery(term string) string {
	words := strings.Fields(nonWord.ReplaceAllString(strings.ToLower(term), " "))
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] += ":*"
	return strings.Join(words, " & ")
}
