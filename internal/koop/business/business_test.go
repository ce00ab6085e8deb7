package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
	"github.com/tarimkoop/koop/internal/koop/notifications"
)

type event struct {
	table, action, id string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeNotifier) Broadcast(table, action, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{table, action, id})
}

func newTestBL(t *testing.T) (*Business, *fakeNotifier) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()))), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dao.Migrate(db))
	n := &fakeNotifier{}
	return NewBL(db, n), n
}

func definedCode(t *testing.T, err error) int {
	t.Helper()
	var de apierrors.DefinedError
	require.True(t, errors.As(err, &de), "not a defined error: %v", err)
	return de.Code
}

func TestNormalizeRichText(t *testing.T) {
	rc, err := NormalizeRichText(`<p class="mb-2" style="color:red">Hello <strong>World</strong></p><script>x</script>`, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello <strong>World</strong></p>", rc.Html.Body)
	assert.Equal(t, "Hello World", rc.Text)
	assert.False(t, rc.IsEmpty())

	snapshot, err := lexical.SerializeString(&edtypes.Document{Blocks: []edtypes.Block{edtypes.NewParagraph("snap")}})
	require.NoError(t, err)
	rc, err = NormalizeRichText("<p>markup</p>", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "<p>snap</p>", rc.Html.Body)

	rc, err = NormalizeRichText("", "")
	require.NoError(t, err)
	assert.True(t, rc.IsEmpty())
	html, state := rc.Stored()
	assert.Empty(t, html.Body)
	assert.Nil(t, state)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "kısa metin", Excerpt("  kısa \n metin "))

	long := strings.Repeat("ş", 250)
	assert.Equal(t, strings.Repeat("ş", ExcerptLength), Excerpt(long))
}

func TestNewsLifecycle(t *testing.T) {
	bl, n := newTestBL(t)
	admin := &dao.User{ID: dao.GenUUID()}

	news, err := bl.CreateNews(admin, NewsInput{
		Title:       "Hasat Şenliği",
		Content:     `<p>Bu yıl <em>hasat</em> bereketli.</p>`,
		Tags:        []string{"hasat", " ", "hasat", "etkinlik"},
		IsPublished: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hasat-şenliği", news.Slug)
	assert.Equal(t, "Bu yıl hasat bereketli.", news.Excerpt)
	assert.Equal(t, []string{"hasat", "etkinlik"}, []string(news.Tags))
	require.NotNil(t, news.PublishedAt)
	require.NotNil(t, news.ContentState)
	assert.Equal(t, admin.ID.String(), *news.CreatedById)

	second, err := bl.CreateNews(admin, NewsInput{Title: "Hasat Şenliği", Content: "<p>ikinci</p>", Excerpt: "özel özet"})
	require.NoError(t, err)
	assert.Equal(t, "hasat-şenliği-2", second.Slug)
	assert.Equal(t, "özel özet", second.Excerpt)
	assert.Nil(t, second.PublishedAt)

	updated, err := bl.UpdateNews(news.ID, NewsInput{Title: "Hasat Şenliği", Content: "<p>güncel</p>", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "hasat-şenliği", updated.Slug)
	assert.Equal(t, "<p>güncel</p>", updated.Content.Body)

	var stored dao.NewsItem
	require.NoError(t, bl.db.Where("id = ?", news.ID).First(&stored).Error)
	assert.Equal(t, "<p>güncel</p>", stored.Content.Body)
	assert.Equal(t, "güncel", stored.ContentState.PlainText())

	require.NoError(t, bl.DeleteNews(news.ID))
	assert.ErrorIs(t, bl.DeleteNews(news.ID), apierrors.ErrNewsNotFound)

	_, err = bl.UpdateNews(dao.GenUUID(), NewsInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, apierrors.ErrNewsNotFound)

	assert.Equal(t, []event{
		{"news", notifications.ActionCreated, news.ID.String()},
		{"news", notifications.ActionCreated, second.ID.String()},
		{"news", notifications.ActionUpdated, news.ID.String()},
		{"news", notifications.ActionDeleted, news.ID.String()},
	}, n.events)
}

func TestNewsValidation(t *testing.T) {
	bl, n := newTestBL(t)

	_, err := bl.CreateNews(nil, NewsInput{Title: "  ", Content: "<p>x</p>"})
	assert.ErrorIs(t, err, apierrors.ErrTitleRequired)

	_, err = bl.CreateNews(nil, NewsInput{Title: "Başlık", Content: "<p><br></p><script>alert(1)</script>"})
	assert.ErrorIs(t, err, apierrors.ErrContentRequired)

	assert.Empty(t, n.events)
}

func TestAnnouncementDate(t *testing.T) {
	bl, _ := newTestBL(t)

	a, err := bl.CreateAnnouncement(nil, AnnouncementInput{Title: "Genel Kurul", Content: "<p>davet</p>", IsImportant: true})
	require.NoError(t, err)
	assert.False(t, a.Date.IsZero())
	assert.Equal(t, "genel-kurul", a.Slug)

	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a, err = bl.UpdateAnnouncement(a.ID, AnnouncementInput{Title: "Genel Kurul Ertelendi", Content: "<p>davet</p>", Date: &date})
	require.NoError(t, err)
	assert.True(t, a.Date.Equal(date))
	assert.Equal(t, "genel-kurul-ertelendi", a.Slug)
	assert.False(t, a.IsImportant)
}

func TestMembers(t *testing.T) {
	bl, _ := newTestBL(t)

	inactive := false
	m, err := bl.CreateMember(MemberInput{FullName: "Ayşe Nur Kaya", Email: "Ayse@Koop.org.tr", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", m.Name)
	assert.Equal(t, "Nur Kaya", m.Surname)
	assert.Equal(t, dao.MemberRoleMember, m.Role)

	var stored dao.Member
	require.NoError(t, bl.db.Where("id = ?", m.ID).First(&stored).Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "ayse@koop.org.tr", stored.Email)

	_, err = bl.CreateMember(MemberInput{Name: "Başka", Email: "ayse@koop.org.tr"})
	assert.ErrorIs(t, err, apierrors.ErrMemberEmailConflict)

	_, err = bl.UpdateMember(m.ID, MemberInput{Name: "Ayşe", Surname: "Kaya", Email: "ayse@koop.org.tr", Role: dao.MemberRoleAudit})
	require.NoError(t, err)

	_, err = bl.CreateMember(MemberInput{FullName: "   "})
	assert.Equal(t, 5001, definedCode(t, err))

	_, err = bl.CreateMember(MemberInput{Name: "Ali", Role: "owner"})
	assert.Equal(t, 5001, definedCode(t, err))
}

func TestBoardMembers(t *testing.T) {
	bl, _ := newTestBL(t)

	_, err := bl.CreateBoardMember(BoardMemberInput{FullName: "Mehmet Demir", Role: "chairman"})
	assert.ErrorIs(t, err, apierrors.ErrInvalidBoardRole)

	bm, err := bl.CreateBoardMember(BoardMemberInput{FullName: " Mehmet   Demir ", Position: "Başkan", Role: dao.BoardRoleBoard})
	require.NoError(t, err)
	assert.Equal(t, "Mehmet Demir", bm.FullName)
	assert.Empty(t, bm.Bio.Body)
	assert.Nil(t, bm.BioState)

	bm, err = bl.UpdateBoardMember(bm.ID, BoardMemberInput{FullName: "Mehmet Demir", Role: dao.BoardRoleBoard, Bio: "<p>Çiftçi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Çiftçi</p>", bm.Bio.Body)
	require.NotNil(t, bm.BioState)
}

func TestProjects(t *testing.T) {
	bl, _ := newTestBL(t)

	_, err := bl.CreateProject(ProjectInput{Title: "Fidan", Category: "madencilik"})
	assert.Equal(t, 2009, definedCode(t, err))
	assert.Contains(t, err.Error(), "madencilik")

	_, err = bl.CreateProject(ProjectInput{Title: "Fidan", Category: "ozel-agaclandirma", Status: "cancelled"})
	assert.ErrorIs(t, err, apierrors.ErrInvalidProjectStatus)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err = bl.CreateProject(ProjectInput{Title: "Fidan", Category: "ozel-agaclandirma", StartDate: &start, EndDate: &end})
	assert.Equal(t, 5001, definedCode(t, err))

	p, err := bl.CreateProject(ProjectInput{
		Title:       "Fidan Dikimi",
		Category:    "ozel-agaclandirma",
		Description: "<h2>Amaç</h2><p>10.000 fidan</p>",
		Features:    []string{"sulama", "gübreleme"},
	})
	require.NoError(t, err)
	assert.Equal(t, "planning", p.Status)
	assert.Equal(t, "Amaç 10.000 fidan", p.ShortDescription)
	assert.Equal(t, "<h2>Amaç</h2><p>10.000 fidan</p>", p.Description.Body)
	assert.True(t, p.Features.Contains("Sulama"))
}

func TestHomeAndHeartbeat(t *testing.T) {
	bl, _ := newTestBL(t)

	for i := range 4 {
		_, err := bl.CreateNews(nil, NewsInput{Title: fmt.Sprintf("Haber %d", i), Content: "<p>x</p>", IsPublished: true})
		require.NoError(t, err)
		_, err = bl.CreateAnnouncement(nil, AnnouncementInput{Title: fmt.Sprintf("Duyuru %d", i), Content: "<p>x</p>", IsPublished: i%2 == 0})
		require.NoError(t, err)
	}
	_, err := bl.CreateMember(MemberInput{FullName: "Ali Veli"})
	require.NoError(t, err)

	home, err := bl.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, home.News, 3)
	assert.Len(t, home.Announcements, 2)
	assert.Equal(t, int64(1), home.Members)
	assert.Equal(t, int64(0), home.Projects)

	count, err := bl.Heartbeat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
