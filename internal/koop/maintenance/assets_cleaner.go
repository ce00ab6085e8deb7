// Пакет для очистки нежелательных файлов в хранилище. Файлы с именем не в формате UUID,
// файлы без записи в базе и файлы, на которые не ссылается ни одна запись сайта,
// перемещаются в директорию "unknown/".
//
// Основные возможности:
//   - Обнаружение и перемещение файлов с нежелательными именами.
//   - Удаление записей о файлах, которые больше не используются.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop/dao"
	filestorage "github.com/tarimkoop/koop/internal/koop/file-storage"
)

// AssetGracePeriod - загруженный файл может быть не привязан к записи, пока форма не сохранена.
const AssetGracePeriod = 24 * time.Hour

type AssetsCleaner struct {
	db  *gorm.DB
	si  filestorage.FileStorage
	now func() time.Time
}

func NewAssetCleaner(db *gorm.DB, si filestorage.FileStorage) *AssetsCleaner {
	return &AssetsCleaner{db: db, si: si, now: time.Now}
}

func (ac *AssetsCleaner) CleanAssets(ctx context.Context) (int, error) {
	slog.Info("Start assets cleaning")

	refs, err := dao.ReferencedAssets(ac.db.WithContext(ctx))
	if err != nil {
		slog.Error("Get referenced assets", "err", err)
		return 0, err
	}
	deadline := ac.now().Add(-AssetGracePeriod)

	var moved int
	err = ac.si.ListRoot(ctx, func(fi filestorage.FileInfo) error {
		if filestorage.IsUnknown(fi.Name) {
			return nil
		}

		id, err := uuid.FromString(fi.Name)
		if err != nil {
			if err := ac.si.Move(ctx, fi.Name, filestorage.UnknownDir+fi.Name); err != nil {
				return err
			}
			moved++
			return nil
		}

		var asset dao.FileAsset
		if err := ac.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&asset).Error; err != nil {
			return err
		}
		if asset.ID != uuid.Nil {
			if _, ok := refs[id.String()]; ok || asset.CreatedAt.After(deadline) {
				return nil
			}
			if err := ac.db.WithContext(ctx).Delete(&asset).Error; err != nil {
				return err
			}
		}

		if err := ac.si.Move(ctx, fi.Name, filestorage.UnknownDir+fi.Name); err != nil {
			return err
		}
		moved++
		return nil
	})
	if err != nil {
		slog.Error("Clean assets fail", "err", err)
	}
	slog.Info("Finish assets cleaning", "moved", moved)
	return moved, err
}
