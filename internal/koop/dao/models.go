package dao

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/types"
)

type FileAsset struct {
	ID          uuid.UUID     `json:"id" gorm:"primaryKey;type:text"`
	CreatedAt   time.Time     `json:"created_at"`
	CreatedById *string       `json:"created_by,omitempty"`
	Name        string        `json:"name" gorm:"index"`
	ContentType string        `json:"content_type"`
	FileSize    int64         `json:"size"`
	ThumbnailId uuid.NullUUID `json:"thumbnail_id" gorm:"type:text"`
}

func (FileAsset) TableName() string { return "file_assets" }

// URL - адрес файла в публичном API.
func (f *FileAsset) URL() string {
	if f == nil {
		return ""
	}
	return "/api/files/" + f.ID.String() + "/"
}

// MarshalJSON добавляет к файлу его публичный адрес.
func (f FileAsset) MarshalJSON() ([]byte, error) {
	type asset FileAsset
	return json.Marshal(struct {
		asset
		URL string `json:"url"`
	}{asset(f), f.URL()})
}

type NewsItem struct {
	ID           uuid.UUID          `json:"id" gorm:"primaryKey;type:text"`
	Title        string             `json:"title" gorm:"not null"`
	Slug         string             `json:"slug" gorm:"uniqueIndex"`
	Content      types.RedactorHTML `json:"content"`
	ContentState *edtypes.Document  `json:"content_state,omitempty"`
	Excerpt      string             `json:"excerpt"`
	Author       string             `json:"author"`
	PublishedAt  *time.Time         `json:"published_at" gorm:"index"`
	Tags         types.StringArray  `json:"tags"`
	IsPublished  bool               `json:"is_published" gorm:"index"`
	IsFeatured   bool               `json:"is_featured"`
	Views        int                `json:"views" gorm:"default:0"`

	FeaturedImageId uuid.NullUUID `json:"featured_image_id" gorm:"type:text"`
	FeaturedImage   *FileAsset    `json:"featured_image,omitempty" gorm:"foreignKey:FeaturedImageId"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedById *string   `json:"-"`
}

func (NewsItem) TableName() string { return "news" }

type Announcement struct {
	ID           uuid.UUID          `json:"id" gorm:"primaryKey;type:text"`
	Title        string             `json:"title" gorm:"not null"`
	Slug         string             `json:"slug" gorm:"uniqueIndex"`
	Content      types.RedactorHTML `json:"content"`
	ContentState *edtypes.Document  `json:"content_state,omitempty"`
	Excerpt      string             `json:"excerpt"`
	Author       string             `json:"author"`
	Date         time.Time          `json:"date" gorm:"index"`
	IsImportant  bool               `json:"is_important"`
	IsPublished  bool               `json:"is_published" gorm:"index"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedById *string   `json:"-"`
}

func (Announcement) TableName() string { return "announcements" }

const (
	MemberRoleMember = "member"
	MemberRoleBoard  = "board"
	MemberRoleAudit  = "audit"
	MemberRoleAdmin  = "admin"
)

type Member struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:text"`
	Name       string     `json:"name" gorm:"index"`
	Surname    string     `json:"surname" gorm:"index"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	JoinDate   *time.Time `json:"join_date"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	Role       string     `json:"role" gorm:"default:'member'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string { return "members" }

func (m Member) FullName() string {
	return strings.TrimSpace(m.Name + " " + m.Surname)
}

// SplitFullName делит "Ad Soyad" на имя (первое слово) и фамилию (остальное).
func SplitFullName(fullName string) (name, surname string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

const (
	BoardRoleBoard = "board"
	BoardRoleAudit = "audit"
)

type BoardMember struct {
	ID       uuid.UUID          `json:"id" gorm:"primaryKey;type:text"`
	FullName string             `json:"full_name" gorm:"not null"`
	Position string             `json:"position"`
	Role     string             `json:"role" gorm:"index"`
	Order    int                `json:"order" gorm:"column:sort_order"`
	Bio      types.RedactorHTML `json:"bio"`
	BioState *edtypes.Document  `json:"bio_state,omitempty"`

	PhotoId uuid.NullUUID `json:"photo_id" gorm:"type:text"`
	Photo   *FileAsset    `json:"photo,omitempty" gorm:"foreignKey:PhotoId"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BoardMember) TableName() string { return "board_members" }

func ValidBoardRole(role string) bool {
	return role == BoardRoleBoard || role == BoardRoleAudit
}

var ProjectCategories = []string{
	"ozel-agaclandirma",
	"hayvansal-uretim",
	"bitkisel-uretim",
	"tarimsal-sanayi",
	"el-sanatlari-hali-kilim",
	"egitim-spor-merkezi",
}

var ProjectStatuses = []string{"planning", "active", "completed", "paused"}

func ValidProjectCategory(c string) bool {
	for _, v := range ProjectCategories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Project struct {
	ID               uuid.UUID          `json:"id" gorm:"primaryKey;type:text"`
	Title            string             `json:"title" gorm:"not null"`
	Slug             string             `json:"slug" gorm:"uniqueIndex"`
	ShortDescription string             `json:"short_description"`
	Description      types.RedactorHTML `json:"description"`
	DescriptionState *edtypes.Document  `json:"description_state,omitempty"`
	Category         string             `json:"category" gorm:"index"`
	Status           string             `json:"status" gorm:"default:'planning'"`
	Location         string             `json:"location"`
	StartDate        *time.Time         `json:"start_date"`
	EndDate          *time.Time         `json:"end_date"`
	Features         types.StringArray  `json:"features"`
	IsPublished      bool               `json:"is_published" gorm:"index"`

	FeaturedImageId uuid.NullUUID `json:"featured_image_id" gorm:"type:text"`
	FeaturedImage   *FileAsset    `json:"featured_image,omitempty" gorm:"foreignKey:FeaturedImageId"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
