// Тела запросов административного API и их преобразование во входные данные business.
package koop

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/business"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// SnapshotField принимает снимок редактора строкой или JSON объектом.
type SnapshotField string

func (s *SnapshotField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SnapshotField(str)
	default:
		*s = SnapshotField(data)
	}
	return nil
}

func parseNullUUID(raw *string, field string) (uuid.NullUUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.FromString(strings.TrimSpace(*raw))
	if err != nil {
		return uuid.NullUUID{}, apierrors.ErrInvalidRequest.WithFormattedMessage(field)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		return uuid.Nil, apierrors.ErrInvalidUUID
	}
	return id, nil
}

// bindRequest разбирает тело и проверяет его валидатором echo.
func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apierrors.ErrInvalidRequest.WithFormattedMessage("body")
	}
	return c.Validate(req)
}

type Pagination struct {
	Offset int
	Limit  int
}

func bindPagination(c echo.Context) (Pagination, error) {
	p := Pagination{Limit: defaultPageLimit}
	if err := echo.QueryParamsBinder(c).
		Int("offset", &p.Offset).
		Int("limit", &p.Limit).
		BindError(); err != nil {
		return p, apierrors.ErrInvalidRequest.WithFormattedMessage("offset, limit")
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 || p.Limit > maxPageLimit {
		p.Limit = defaultPageLimit
	}
	return p, nil
}

type NewsRequest struct {
	Title           string        `json:"title" validate:"max=200"`
	Content         string        `json:"content"`
	ContentState    SnapshotField `json:"content_state"`
	Excerpt         string        `json:"excerpt" validate:"max=1000"`
	Author          string        `json:"author" validate:"max=100"`
	PublishedAt     *time.Time    `json:"published_at"`
	Tags            []string      `json:"tags" validate:"max=20,dive,max=50"`
	IsPublished     bool          `json:"is_published"`
	IsFeatured      bool          `json:"is_featured"`
	FeaturedImageId *string       `json:"featured_image_id"`
}

func (req *NewsRequest) Bind() (business.NewsInput, error) {
	imageId, err := parseNullUUID(req.FeaturedImageId, "featured_image_id")
	if err != nil {
		return business.NewsInput{}, err
	}
	return business.NewsInput{
		Title:           req.Title,
		Content:         req.Content,
		ContentState:    string(req.ContentState),
		Excerpt:         req.Excerpt,
		Author:          req.Author,
		PublishedAt:     req.PublishedAt,
		Tags:            req.Tags,
		IsPublished:     req.IsPublished,
		IsFeatured:      req.IsFeatured,
		FeaturedImageId: imageId,
	}, nil
}

type AnnouncementRequest struct {
	Title        string        `json:"title" validate:"max=200"`
	Content      string        `json:"content"`
	ContentState SnapshotField `json:"content_state"`
	Excerpt      string        `json:"excerpt" validate:"max=1000"`
	Author       string        `json:"author" validate:"max=100"`
	Date         *time.Time    `json:"date"`
	IsImportant  bool          `json:"is_important"`
	IsPublished  bool          `json:"is_published"`
}

func (req *AnnouncementRequest) Bind() business.AnnouncementInput {
	return business.AnnouncementInput{
		Title:        req.Title,
		Content:      req.Content,
		ContentState: string(req.ContentState),
		Excerpt:      req.Excerpt,
		Author:       req.Author,
		Date:         req.Date,
		IsImportant:  req.IsImportant,
		IsPublished:  req.IsPublished,
	}
}

type MemberRequest struct {
	FullName   string     `json:"full_name" validate:"personName"`
	Name       string     `json:"name" validate:"personName"`
	Surname    string     `json:"surname" validate:"personName"`
	Position   string     `json:"position" validate:"max=100"`
	Department string     `json:"department" validate:"max=100"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Phone      string     `json:"phone" validate:"phone"`
	JoinDate   *time.Time `json:"join_date"`
	IsActive   *bool      `json:"is_active"`
	Role       string     `json:"role"`
}

func (req *MemberRequest) Bind() business.MemberInput {
	return business.MemberInput{
		FullName:   req.FullName,
		Name:       req.Name,
		Surname:    req.Surname,
		Position:   req.Position,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		JoinDate:   req.JoinDate,
		IsActive:   req.IsActive,
		Role:       req.Role,
	}
}

type BoardMemberRequest struct {
	FullName string        `json:"full_name" validate:"personName"`
	Position string        `json:"position" validate:"max=100"`
	Role     string        `json:"role"`
	Order    int           `json:"order" validate:"min=0"`
	Bio      string        `json:"bio"`
	BioState SnapshotField `json:"bio_state"`
	PhotoId  *string       `json:"photo_id"`
}

func (req *BoardMemberRequest) Bind() (business.BoardMemberInput, error) {
	photoId, err := parseNullUUID(req.PhotoId, "photo_id")
	if err != nil {
		return business.BoardMemberInput{}, err
	}
	return business.BoardMemberInput{
		FullName: req.FullName,
		Position: req.Position,
		Role:     req.Role,
		Order:    req.Order,
		Bio:      req.Bio,
		BioState: string(req.BioState),
		PhotoId:  photoId,
	}, nil
}

type ProjectRequest struct {
	Title            string        `json:"title" validate:"max=200"`
	ShortDescription string        `json:"short_description" validate:"max=500"`
	Description      string        `json:"description"`
	DescriptionState SnapshotField `json:"description_state"`
	Category         string        `json:"category"`
	Status           string        `json:"status"`
	Location         string        `json:"location" validate:"max=200"`
	StartDate        *time.Time    `json:"start_date"`
	EndDate          *time.Time    `json:"end_date"`
	Features         []string      `json:"features" validate:"max=30,dive,max=200"`
	IsPublished      bool          `json:"is_published"`
	FeaturedImageId  *string       `json:"featured_image_id"`
}

func (req *ProjectRequest) Bind() (business.ProjectInput, error) {
	imageId, err := parseNullUUID(req.FeaturedImageId, "featured_image_id")
	if err != nil {
		return business.ProjectInput{}, err
	}
	return business.ProjectInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		DescriptionState: string(req.DescriptionState),
		Category:         req.Category,
		Status:           req.Status,
		Location:         req.Location,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Features:         req.Features,
		IsPublished:      req.IsPublished,
		FeaturedImageId:  imageId,
	}, nil
}

type RenderRequest struct {
	Html  string        `json:"html"`
	State SnapshotField `json:"state"`
}
