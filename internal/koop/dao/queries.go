package dao

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Запросы публичной части сайта.

func PublishedNews(db *gorm.DB) *gorm.DB {
	return db.Model(&NewsItem{}).
		Preload("FeaturedImage").
		Where("is_published = ?", true).
		Order("published_at desc").
		Order("created_at desc")
}

func PublishedAnnouncements(db *gorm.DB) *gorm.DB {
	return db.Model(&Announcement{}).
		Where("is_published = ?", true).
		Order("is_important desc").
		Order("date desc")
}

func ActiveMembers(db *gorm.DB) *gorm.DB {
	return db.Model(&Member{}).
		Where("is_active = ?", true).
		Order("surname").
		Order("name")
}

func Board(db *gorm.DB) *gorm.DB {
	return db.Model(&BoardMember{}).
		Preload("Photo").
		// board идет раньше audit
		Order("role desc").
		Order("sort_order").
		Order("full_name")
}

func PublishedProjects(db *gorm.DB, category string) *gorm.DB {
	q := db.Model(&Project{}).
		Preload("FeaturedImage").
		Where("is_published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return q.Order("created_at desc")
}

// NewsBySlug возвращает опубликованную новость и увеличивает счетчик просмотров.
func NewsBySlug(db *gorm.DB, slug string) (NewsItem, error) {
	var news NewsItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := PublishedNews(tx).Where("slug = ?", slug).First(&news).Error; err != nil {
			return err
		}
		news.Views++
		return tx.Model(&NewsItem{}).
			Where("id = ?", news.ID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
	})
	return news, err
}

func AnnouncementBySlug(db *gorm.DB, slug string) (Announcement, error) {
	var a Announcement
	err := PublishedAnnouncements(db).Where("slug = ?", slug).First(&a).Error
	return a, err
}

func ProjectBySlug(db *gorm.DB, slug string) (Project, error) {
	var p Project
	err := PublishedProjects(db, "").Where("slug = ?", slug).First(&p).Error
	return p, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// SlugEntry - запись для sitemap.
type SlugEntry struct {
	Slug      string
	UpdatedAt time.Time
}

func NewsSlugs(db *gorm.DB) ([]SlugEntry, error) {
	var res []SlugEntry
	err := db.Model(&NewsItem{}).
		Select("slug", "updated_at").
		Where("is_published = ?", true).
		Order("updated_at desc").
		Find(&res).Error
	return res, err
}

func AnnouncementSlugs(db *gorm.DB) ([]SlugEntry, error) {
	var res []SlugEntry
	err := db.Model(&Announcement{}).
		Select("slug", "updated_at").
		Where("is_published = ?", true).
		Order("updated_at desc").
		Find(&res).Error
	return res, err
}

// assetReferences - колонки записей, ссылающиеся на файлы.
var assetReferences = []struct {
	model  any
	column string
}{
	{&NewsItem{}, "featured_image_id"},
	{&Project{}, "featured_image_id"},
	{&BoardMember{}, "photo_id"},
}

// ReferencedAssets - id всех файлов, на которые ссылаются записи.
func ReferencedAssets(db *gorm.DB) (map[string]struct{}, error) {
	res := make(map[string]struct{})
	for _, q := range assetReferences {
		var ids []string
		if err := db.Model(q.model).Where(q.column+" IS NOT NULL").Pluck(q.column, &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			res[id] = struct{}{}
		}
	}

	if len(res) == 0 {
		return res, nil
	}
	ids := make([]string, 0, len(res))
	for id := range res {
		ids = append(ids, id)
	}
	var thumbs []string
	if err := db.Model(&FileAsset{}).
		Where("id IN ?", ids).
		Where("thumbnail_id IS NOT NULL").
		Pluck("thumbnail_id", &thumbs).Error; err != nil {
		return nil, err
	}
	for _, id := range thumbs {
		res[id] = struct{}{}
	}
	return res, nil
}

// DeleteAssets удаляет записи файлов и обнуляет ссылки на них.
func DeleteAssets(db *gorm.DB, ids []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, q := range assetReferences {
			if err := tx.Model(q.model).
				Where(q.column+" IN ?", ids).
				UpdateColumn(q.column, nil).Error; err != nil {
				return err
			}
		}
		return tx.Where("id IN ?", ids).Delete(&FileAsset{}).Error
	})
}
