package dao

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarimkoop/koop/internal/koop/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()))), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Yeni Proje Başladı":         "yeni-proje-başladı",
		"  İzmir  Şubesi ":           "izmir-şubesi",
		"Genel Kurul: 2024 / Davet?": "genel-kurul-2024-davet",
		"---":                        "",
		"Hasat - Ekim":               "hasat-ekim",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestUniqueSlug(t *testing.T) {
	db := testDB(t)

	first := Announcement{ID: GenUUID(), Title: "Genel Kurul", Slug: "genel-kurul", Date: time.Now()}
	require.NoError(t, db.Create(&first).Error)

	slug, err := UniqueSlug(db, &Announcement{}, "Genel Kurul", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "genel-kurul-2", slug)

	require.NoError(t, db.Create(&Announcement{ID: GenUUID(), Title: "Genel Kurul", Slug: slug, Date: time.Now()}).Error)
	slug, err = UniqueSlug(db, &Announcement{}, "Genel Kurul", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "genel-kurul-3", slug)

	slug, err = UniqueSlug(db, &Announcement{}, "Genel Kurul", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "genel-kurul", slug)

	slug, err = UniqueSlug(db, &Announcement{}, "!!!", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, defaultSlug, slug)
}

func TestPasswordHash(t *testing.T) {
	hash := GenPasswordHash("gizli-parola")
	assert.True(t, CheckPasswordHash("gizli-parola", hash))
	assert.False(t, CheckPasswordHash("yanlış", hash))
	assert.False(t, CheckPasswordHash("gizli-parola", "md5$1$a$b"))
	assert.False(t, CheckPasswordHash("gizli-parola", ""))
	assert.NotEqual(t, hash, GenPasswordHash("gizli-parola"))

	assert.Len(t, GenPassword(), 16)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := testDB(t)

	require.NoError(t, EnsureDefaultAdmin(db, " Admin@TarimKoop.org.tr ", "parola123"))
	require.NoError(t, EnsureDefaultAdmin(db, "other@tarimkoop.org.tr", "x"))

	var users []User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@tarimkoop.org.tr", users[0].Email)
	assert.True(t, users[0].IsSuperuser)
	assert.True(t, users[0].CheckPassword("parola123"))
}

func TestTokenBlacklist(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	require.NoError(t, BlacklistToken(db, "sig-1", now.Add(-time.Minute)))
	require.NoError(t, BlacklistToken(db, "sig-2", now.Add(time.Hour)))
	require.NoError(t, BlacklistToken(db, "sig-2", now.Add(time.Hour)))

	exist, err := IsTokenBlacklisted(db, "sig-2")
	require.NoError(t, err)
	assert.True(t, exist)

	removed, err := CleanTokenBlacklist(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	exist, err = IsTokenBlacklisted(db, "sig-1")
	require.NoError(t, err)
	assert.False(t, exist)
}

func TestPublicQueries(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	require.NoError(t, db.Create([]Announcement{
		{ID: GenUUID(), Title: "eski", Slug: "eski", Date: now.Add(-48 * time.Hour), IsPublished: true},
		{ID: GenUUID(), Title: "yeni", Slug: "yeni", Date: now, IsPublished: true},
		{ID: GenUUID(), Title: "önemli", Slug: "onemli", Date: now.Add(-72 * time.Hour), IsPublished: true, IsImportant: true},
		{ID: GenUUID(), Title: "taslak", Slug: "taslak", Date: now, IsPublished: false},
	}).Error)

	var anns []Announcement
	require.NoError(t, PublishedAnnouncements(db).Find(&anns).Error)
	require.Len(t, anns, 3)
	assert.Equal(t, []string{"önemli", "yeni", "eski"}, []string{anns[0].Title, anns[1].Title, anns[2].Title})

	require.NoError(t, db.Create([]BoardMember{
		{ID: GenUUID(), FullName: "Denetçi", Role: BoardRoleAudit, Order: 0},
		{ID: GenUUID(), FullName: "Başkan", Role: BoardRoleBoard, Order: 0},
		{ID: GenUUID(), FullName: "Üye", Role: BoardRoleBoard, Order: 1},
	}).Error)
	var board []BoardMember
	require.NoError(t, Board(db).Find(&board).Error)
	require.Len(t, board, 3)
	assert.Equal(t, "Başkan", board[0].FullName)
	assert.Equal(t, "Üye", board[1].FullName)
	assert.Equal(t, "Denetçi", board[2].FullName)

	require.NoError(t, db.Create([]Member{
		{ID: GenUUID(), Name: "Zeynep", Surname: "Acar", IsActive: true},
		{ID: GenUUID(), Name: "Ali", Surname: "Yılmaz", IsActive: true},
	}).Error)
	require.NoError(t, db.Create(&Member{ID: GenUUID(), Name: "Eski", Surname: "Üye"}).Error)
	require.NoError(t, db.Model(&Member{}).Where("name = ?", "Eski").Update("is_active", false).Error)

	var members []Member
	require.NoError(t, ActiveMembers(db).Find(&members).Error)
	require.Len(t, members, 2)
	assert.Equal(t, "Zeynep Acar", members[0].FullName())
}

func TestNewsBySlugCountsViews(t *testing.T) {
	db := testDB(t)
	published := time.Now().Truncate(time.Second)
	news := NewsItem{ID: GenUUID(), Title: "Hasat", Slug: "hasat", IsPublished: true, PublishedAt: &published,
		Content: types.NewRedactorHTML("<p>hasat</p>"), Tags: types.StringArray{"tarım"}}
	require.NoError(t, db.Create(&news).Error)

	got, err := NewsBySlug(db, "hasat")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, types.StringArray{"tarım"}, got.Tags)

	got, err = NewsBySlug(db, "hasat")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	_, err = NewsBySlug(db, "yok")
	assert.True(t, IsNotFound(err))
}

func TestPagination(t *testing.T) {
	db := testDB(t)
	for i := range 5 {
		require.NoError(t, db.Create(&Project{ID: GenUUID(), Title: fmt.Sprint(i), Slug: fmt.Sprint("p", i), Category: ProjectCategories[0], Status: "active"}).Error)
	}

	var projects []Project
	resp, err := PaginationRequest(1, 2, db.Model(&Project{}).Order("title"), &projects)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Count)
	assert.Equal(t, 1, resp.Offset)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, projects, 2)
	assert.Equal(t, "1", projects[0].Title)
}

func TestReferencedAssets(t *testing.T) {
	db := testDB(t)

	thumb := FileAsset{ID: GenUUID(), Name: "thumb.jpg"}
	image := FileAsset{ID: GenUUID(), Name: "image.jpg", ThumbnailId: uuid.NullUUID{UUID: thumb.ID, Valid: true}}
	orphan := FileAsset{ID: GenUUID(), Name: "orphan.jpg"}
	require.NoError(t, db.Create([]*FileAsset{&thumb, &image, &orphan}).Error)
	require.NoError(t, db.Create(&Project{ID: GenUUID(), Title: "p", Slug: "p",
		FeaturedImageId: uuid.NullUUID{UUID: image.ID, Valid: true}}).Error)

	refs, err := ReferencedAssets(db)
	require.NoError(t, err)
	assert.Contains(t, refs, image.ID.String())
	assert.Contains(t, refs, thumb.ID.String())
	assert.NotContains(t, refs, orphan.ID.String())
}

func TestDeleteAssets(t *testing.T) {
	db := testDB(t)

	image := FileAsset{ID: GenUUID(), Name: "image.jpg"}
	require.NoError(t, db.Create(&image).Error)
	bm := BoardMember{ID: GenUUID(), FullName: "Ali Veli", Role: BoardRoleBoard,
		PhotoId: uuid.NullUUID{UUID: image.ID, Valid: true}}
	require.NoError(t, db.Create(&bm).Error)

	require.NoError(t, DeleteAssets(db, []string{image.ID.String()}))

	var count int64
	require.NoError(t, db.Model(&FileAsset{}).Count(&count).Error)
	assert.Zero(t, count)

	var got BoardMember
	require.NoError(t, db.First(&got, "id = ?", bm.ID).Error)
	assert.False(t, got.PhotoId.Valid)
}

func TestSplitFullName(t *testing.T) {
	name, surname := SplitFullName("  Ayşe Nur  Kaya ")
	assert.Equal(t, "Ayşe", name)
	assert.Equal(t, "Nur Kaya", surname)

	name, surname = SplitFullName("Mehmet")
	assert.Equal(t, "Mehmet", name)
	assert.Empty(t, surname)
}


func TestFileAssetJSON(t *testing.T) {
	asset := FileAsset{ID: GenUUID(), Name: "tarla.jpg", ContentType: "image/jpeg"}
	data, err := json.Marshal(NewsItem{Title: "Hasat", FeaturedImage: &asset})
	require.NoError(t, err)

	var res struct {
		FeaturedImage map[string]any `json:"featured_image"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "/api/files/"+asset.ID.String()+"/", res.FeaturedImage["url"])
	assert.Equal(t, "tarla.jpg", res.FeaturedImage["name"])
}
