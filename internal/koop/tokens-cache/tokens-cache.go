// Package tokenscache хранит выданную при обновлении пару токенов несколько секунд,
// чтобы параллельные запросы обновления с одним refresh токеном получили одну и ту же пару.
package tokenscache

import (
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/dao"
)

const TTL = 15 * time.Second

// TokenInfo - пара, выданная в обмен на refresh токен.
type TokenInfo struct {
	AccessToken  string
	RefreshToken string
	User         *dao.User
	CreatedAt    time.Time
}

func (ti TokenInfo) expired(now time.Time) bool {
	return now.Sub(ti.CreatedAt) > TTL
}

type TokensCache struct {
	mu     sync.Mutex
	issued map[string]TokenInfo
	now    func() time.Time
}

func NewTokensCache() *TokensCache {
	return &TokensCache{
		issued: make(map[string]TokenInfo),
		now:    time.Now,
	}
}

// GetTokens возвращает пару, выданную по oldRefreshToken, если она еще не устарела.
func (c *TokensCache) GetTokens(oldRefreshToken string) *TokenInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	ti, ok := c.issued[oldRefreshToken]
	if !ok {
		return nil
	}
	if ti.expired(c.now()) {
		delete(c.issued, oldRefreshToken)
		return nil
	}
	return &ti
}

// StoreTokens запоминает пару и попутно вычищает устаревшие.
func (c *TokensCache) StoreTokens(oldRefreshToken, accessToken, refreshToken string, user *dao.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evict(func(ti TokenInfo) bool { return ti.expired(now) })
	c.issued[oldRefreshToken] = TokenInfo{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		CreatedAt:    now,
	}
}

// ForgetUser удаляет все пары пользователя (выход, смена пароля).
func (c *TokensCache) ForgetUser(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(func(ti TokenInfo) bool { return ti.User != nil && ti.User.ID == userID })
}

func (c *TokensCache) evict(match func(TokenInfo) bool) {
	for k, ti := range c.issued {
		if match(ti) {
			delete(c.issued, k)
		}
	}
}
