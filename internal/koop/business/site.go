package business

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tarimkoop/koop/internal/koop/dao"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

const homeItems = 3

type HomeData struct {
	News          []dao.NewsItem     `json:"news"`
	Announcements []dao.Announcement `json:"announcements"`
	Projects      int64              `json:"projects_count"`
	Members       int64              `json:"members_count"`
}

// Home собирает данные главной страницы параллельными запросами.
func (b *Business) Home(ctx context.Context) (HomeData, error) {
	var res HomeData

	g, gctx := errgroup.WithContext(ctx)
	db := b.db.WithContext(gctx)
	g.Go(func() error {
		return dao.PublishedNews(db).Limit(homeItems).Find(&res.News).Error
	})
	g.Go(func() error {
		return dao.PublishedAnnouncements(db).Limit(homeItems).Find(&res.Announcements).Error
	})
	g.Go(func() error {
		return db.Model(&dao.Project{}).Where("is_published = ?", true).Count(&res.Projects).Error
	})
	g.Go(func() error {
		return db.Model(&dao.Member{}).Where("is_active = ?", true).Count(&res.Members).Error
	})
	if err := g.Wait(); err != nil {
		return HomeData{}, errStack.TrackErrorStack(err).AddContext("page", "home")
	}
	return res, nil
}

// Heartbeat выполняет легкий запрос, чтобы база не засыпала.
func (b *Business) Heartbeat(ctx context.Context) (int64, error) {
	var count int64
	err := b.db.WithContext(ctx).Model(&dao.Announcement{}).Count(&count).Error
	return count, err
}
