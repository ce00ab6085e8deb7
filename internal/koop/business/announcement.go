package business

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/notifications"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

type AnnouncementInput struct {
	Title        string
	Content      string
	ContentState string
	Excerpt      string
	Author       string
	Date         *time.Time
	IsImportant  bool
	IsPublished  bool
}

func (b *Business) CreateAnnouncement(user *dao.User, in AnnouncementInput) (*dao.Announcement, error) {
	a := dao.Announcement{ID: dao.GenUUID()}
	if user != nil {
		id := user.ID.String()
		a.CreatedById = &id
	}
	if err := b.fillAnnouncement(&a, in); err != nil {
		return nil, err
	}
	if err := b.db.Create(&a).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", a.TableName()).AddContext("id", a.ID)
	}
	b.notify(a.TableName(), notifications.ActionCreated, a.ID.String())
	return &a, nil
}

func (b *Business) UpdateAnnouncement(id uuid.UUID, in AnnouncementInput) (*dao.Announcement, error) {
	var a dao.Announcement
	if err := b.db.Where("id = ?", id).First(&a).Error; err != nil {
		if dao.IsNotFound(err) {
			return nil, apierrors.ErrAnnouncementNotFound
		}
		return nil, err
	}
	if err := b.fillAnnouncement(&a, in); err != nil {
		return nil, err
	}
	if err := b.db.Select("*").Omit("created_at", "created_by_id").Updates(&a).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", a.TableName()).AddContext("id", a.ID)
	}
	b.notify(a.TableName(), notifications.ActionUpdated, a.ID.String())
	return &a, nil
}

func (b *Business) DeleteAnnouncement(id uuid.UUID) error {
	return b.deleteRecord(&dao.Announcement{}, id, apierrors.ErrAnnouncementNotFound)
}

func (b *Business) fillAnnouncement(a *dao.Announcement, in AnnouncementInput) error {
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

	if a.Title != title || a.Slug == "" {
		slug, err := dao.UniqueSlug(b.db, &dao.Announcement{}, title, a.ID)
		if err != nil {
			return err
		}
		a.Slug = slug
	}

	a.Title = title
	a.Content = rc.Html
	a.ContentState = rc.State
	a.Excerpt = excerptOr(in.Excerpt, rc)
	a.Author = strings.TrimSpace(in.Author)
	a.IsImportant = in.IsImportant
	a.IsPublished = in.IsPublished
	switch {
	case in.Date != nil:
		a.Date = *in.Date
	case a.Date.IsZero():
		a.Date = time.Now()
	}
	return nil
}
