package maintenance

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop/business"
	"github.com/tarimkoop/koop/internal/koop/dao"
)

// Heartbeat - периодический легкий запрос к базе и очистка просроченных токенов.
type Heartbeat struct {
	db *gorm.DB
	bl *business.Business
}

func NewHeartbeat(db *gorm.DB, bl *business.Business) *Heartbeat {
	return &Heartbeat{db: db, bl: bl}
}

func (h *Heartbeat) Run(ctx context.Context) error {
	count, err := h.bl.Heartbeat(ctx)
	if err != nil {
		slog.Error("Heartbeat query", "err", err)
		return err
	}

	removed, err := dao.CleanTokenBlacklist(h.db.WithContext(ctx), time.Now())
	if err != nil {
		slog.Error("Clean token blacklist", "err", err)
		return err
	}
	slog.Info("Heartbeat", "announcements", count, "expiredTokens", removed)
	return nil
}
