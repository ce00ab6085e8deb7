// DAO - модели содержимого сайта кооператива и функции доступа к базе.
//
// Основные возможности:
//   - Модели новостей, объявлений, членов, правления, проектов, файлов и администраторов.
//   - Генерация UUID, паролей и уникальных slug.
//   - Постраничная выборка с подсчетом общего количества.
package dao

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

// AllModels - модели для автоматической миграции.
func AllModels() []any {
	return []any{
		&FileAsset{},
		&User{},
		&TokenBlacklist{},
		&NewsItem{},
		&Announcement{},
		&Member{},
		&BoardMember{},
		&Project{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

type PaginationResponse struct {
	Count  int64 `json:"count"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Result any   `json:"result"`
}

func PaginationRequest(offset int, limit int, query *gorm.DB, target any) (res PaginationResponse, err error) {
	if err := query.Session(&gorm.Session{}).Model(target).Count(&res.Count).Error; err != nil {
		return res, err
	}

	if err := query.Offset(offset).Limit(limit).Find(target).Error; err != nil {
		return res, err
	}

	res.Result = target
	res.Limit = limit
	res.Offset = offset

	return res, nil
}
