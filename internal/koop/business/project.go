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

type ProjectInput struct {
	Title            string
	ShortDescription string
	Description      string
	DescriptionState string
	Category         string
	Status           string
	Location         string
	StartDate        *time.Time
	EndDate          *time.Time
	Features         []string
	IsPublished      bool
	FeaturedImageId  uuid.NullUUID
}

func (b *Business) CreateProject(in ProjectInput) (*dao.Project, error) {
	p := dao.Project{ID: dao.GenUUID()}
	if err := b.fillProject(&p, in); err != nil {
		return nil, err
	}
	if err := b.db.Create(&p).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", p.TableName()).AddContext("id", p.ID)
	}
	b.notify(p.TableName(), notifications.ActionCreated, p.ID.String())
	return &p, nil
}

func (b *Business) UpdateProject(id uuid.UUID, in ProjectInput) (*dao.Project, error) {
	var p dao.Project
	if err := b.db.Where("id = ?", id).First(&p).Error; err != nil {
		if dao.IsNotFound(err) {
			return nil, apierrors.ErrProjectNotFound
		}
		return nil, err
	}
	if err := b.fillProject(&p, in); err != nil {
		return nil, err
	}
	if err := b.db.Select("*").Omit("created_at").Updates(&p).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", p.TableName()).AddContext("id", p.ID)
	}
	b.notify(p.TableName(), notifications.ActionUpdated, p.ID.String())
	return &p, nil
}

func (b *Business) DeleteProject(id uuid.UUID) error {
	return b.deleteRecord(&dao.Project{}, id, apierrors.ErrProjectNotFound)
}

func (b *Business) fillProject(p *dao.Project, in ProjectInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apierrors.ErrTitleRequired
	}
	if !dao.ValidProjectCategory(in.Category) {
		return apierrors.ErrInvalidCategory.WithFormattedMessage(in.Category)
	}
	status := in.Status
	if status == "" {
		status = "planning"
	}
	if !dao.ValidProjectStatus(status) {
		return apierrors.ErrInvalidProjectStatus
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return apierrors.ErrInvalidRequest.WithFormattedMessage("end_date")
	}

	rc, err := NormalizeRichText(in.Description, in.DescriptionState)
	if err != nil {
		return err
	}

	if p.Title != title || p.Slug == "" {
		slug, err := dao.UniqueSlug(b.db, &dao.Project{}, title, p.ID)
		if err != nil {
			return err
		}
		p.Slug = slug
	}

	p.Title = title
	p.ShortDescription = strings.TrimSpace(in.ShortDescription)
	if p.ShortDescription == "" {
		p.ShortDescription = Excerpt(rc.Text)
	}
	p.Description, p.DescriptionState = rc.Stored()
	p.Category = in.Category
	p.Status = status
	p.Location = strings.TrimSpace(in.Location)
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.Features = normalizeTags(in.Features)
	p.IsPublished = in.IsPublished
	p.FeaturedImageId = in.FeaturedImageId
	return nil
}
