package business

import (
	"gorm.io/gorm"
)

// ChangeNotifier получает события изменения записей для рассылки клиентам.
type ChangeNotifier interface {
	Broadcast(table, action, id string)
}

type Business struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

func NewBL(db *gorm.DB, notifier ChangeNotifier) *Business {
	return &Business{
		db:       db,
		notifier: notifier,
	}
}

func (b *Business) notify(table, action, id string) {
	if b.notifier == nil {
		return
	}
	b.notifier.Broadcast(table, action, id)
}
