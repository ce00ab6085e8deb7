package business

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/notifications"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
	"github.com/tarimkoop/koop/internal/koop/types"
)

type NewsInput struct {
	Title           string
	Content         string
	ContentState    string
	Excerpt         string
	Author          string
	PublishedAt     *time.Time
	Tags            []string
	IsPublished     bool
	IsFeatured      bool
	FeaturedImageId uuid.NullUUID
}

// CreateNews создает новость. Опубликованная новость без даты получает текущее время.
func (b *Business) CreateNews(user *dao.User, in NewsInput) (*dao.NewsItem, error) {
	news := dao.NewsItem{ID: dao.GenUUID()}
	if user != nil {
		id := user.ID.String()
		news.CreatedById = &id
	}
	if err := b.fillNews(&news, in); err != nil {
		return nil, err
	}
	if err := b.db.Create(&news).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", news.TableName()).AddContext("id", news.ID)
	}
	b.notify(news.TableName(), notifications.ActionCreated, news.ID.String())
	return &news, nil
}

func (b *Business) UpdateNews(id uuid.UUID, in NewsInput) (*dao.NewsItem, error) {
	var news dao.NewsItem
	if err := b.db.Where("id = ?", id).First(&news).Error; err != nil {
		if dao.IsNotFound(err) {
			return nil, apierrors.ErrNewsNotFound
		}
		return nil, err
	}
	if err := b.fillNews(&news, in); err != nil {
		return nil, err
	}
	if err := b.db.Select("*").Omit("created_at", "created_by_id", "views").Updates(&news).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", news.TableName()).AddContext("id", news.ID)
	}
	b.notify(news.TableName(), notifications.ActionUpdated, news.ID.String())
	return &news, nil
}

func (b *Business) DeleteNews(id uuid.UUID) error {
	return b.deleteRecord(&dao.NewsItem{}, id, apierrors.ErrNewsNotFound)
}

func (b *Business) fillNews(news *dao.NewsItem, in NewsInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apierrors.ErrTitleRequired
	}
	rc, err := NormalizeRichText(in.Content, in.ContentState)
	if err != nil {
		return err
	}
	if rc.IsEmpty() {
		return apierrors.ErrContentRequired
	}

	if news.Title != title || news.Slug == "" {
		slug, err := dao.UniqueSlug(b.db, &dao.NewsItem{}, title, news.ID)
		if err != nil {
			return err
		}
		news.Slug = slug
	}

	news.Title = title
	news.Content = rc.Html
	news.ContentState = rc.State
	news.Excerpt = excerptOr(in.Excerpt, rc)
	news.Author = strings.TrimSpace(in.Author)
	news.Tags = normalizeTags(in.Tags)
	news.IsPublished = in.IsPublished
	news.IsFeatured = in.IsFeatured
	news.FeaturedImageId = in.FeaturedImageId
	news.PublishedAt = in.PublishedAt
	if news.IsPublished && news.PublishedAt == nil {
		now := time.Now()
		news.PublishedAt = &now
	}
	return nil
}

func normalizeTags(tags []string) types.StringArray {
	res := make(types.StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || res.Contains(t) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// deleteRecord удаляет запись по id, notFound возвращается если записи нет.
func (b *Business) deleteRecord(model interface{ TableName() string }, id uuid.UUID, notFound error) error {
	res := b.db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return errStack.TrackErrorStack(res.Error).AddContext("table", model.TableName()).AddContext("id", id)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	b.notify(model.TableName(), notifications.ActionDeleted, id.String())
	return nil
}
