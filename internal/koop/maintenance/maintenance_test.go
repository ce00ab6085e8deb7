package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarimkoop/koop/internal/koop/business"
	"github.com/tarimkoop/koop/internal/koop/dao"
	filestorage "github.com/tarimkoop/koop/internal/koop/file-storage"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()))), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))
	return db
}

func TestCleanAssets(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	root := t.TempDir()
	storage, err := filestorage.NewLocalStorage(root)
	require.NoError(t, err)

	now := time.Now()
	referenced := dao.FileAsset{ID: dao.GenUUID(), Name: "ref.jpg", CreatedAt: now.Add(-72 * time.Hour)}
	stale := dao.FileAsset{ID: dao.GenUUID(), Name: "stale.jpg", CreatedAt: now.Add(-48 * time.Hour)}
	fresh := dao.FileAsset{ID: dao.GenUUID(), Name: "fresh.jpg", CreatedAt: now.Add(-time.Hour)}
	orphan := dao.GenUUID()
	require.NoError(t, db.Create([]*dao.FileAsset{&referenced, &stale, &fresh}).Error)
	require.NoError(t, db.Create(&dao.Project{ID: dao.GenUUID(), Title: "p", Slug: "p",
		FeaturedImageId: uuid.NullUUID{UUID: referenced.ID, Valid: true}}).Error)

	for _, id := range []uuid.UUID{referenced.ID, stale.ID, fresh.ID, orphan} {
		require.NoError(t, storage.Save(ctx, []byte("img"), id, "image/jpeg", nil))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unknown"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unknown", "old"), []byte("x"), 0o644))

	cleaner := NewAssetCleaner(db, storage)
	cleaner.now = func() time.Time { return now }

	moved, err := cleaner.CleanAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	for _, id := range []uuid.UUID{referenced.ID, fresh.ID} {
		exist, err := storage.Exist(ctx, id)
		require.NoError(t, err)
		assert.True(t, exist, id.String())
	}
	for _, name := range []string{stale.ID.String(), orphan.String(), "notes.txt", "old"} {
		assert.FileExists(t, filepath.Join(root, "unknown", name))
	}

	var count int64
	require.NoError(t, db.Model(&dao.FileAsset{}).Where("id = ?", stale.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHeartbeat(t *testing.T) {
	db := testDB(t)
	bl := business.NewBL(db, nil)

	_, err := bl.CreateAnnouncement(nil, business.AnnouncementInput{Title: "Duyuru", Content: "<p>x</p>"})
	require.NoError(t, err)
	require.NoError(t, dao.BlacklistToken(db, "expired", time.Now().Add(-time.Hour)))

	require.NoError(t, NewHeartbeat(db, bl).Run(context.Background()))

	exist, err := dao.IsTokenBlacklisted(db, "expired")
	require.NoError(t, err)
	assert.False(t, exist)
}
