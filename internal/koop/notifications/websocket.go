// Рассылка событий изменения содержимого подключенным клиентам сайта.
//
// Основные возможности:
//   - Поддержка множества анонимных вебсокетных сессий.
//   - Отправка события {table, action, id} всем сессиям через JSON.
//   - Запись в сокет из отдельной горутины сессии через буфер; медленный клиент отключается.
//   - Пинг для поддержания активных соединений и удаление отвалившихся.
package notifications

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
)

const (
	pingPeriod   = time.Second * 20
	timeout      = time.Minute
	writeTimeout = time.Second * 10
	sendBuffer   = 32
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type ChangeEvent struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	Id     string    `json:"id"`
	SentAt time.Time `json:"sent_at"`
}

type realtimeSession struct {
	conn *websocket.Conn
	send chan ChangeEvent
	stop context.CancelFunc
}

type RealtimeService struct {
	sessions map[uuid.UUID]*realtimeSession
	mutex    sync.RWMutex

	originPatterns []string
}

func NewRealtimeService(originPatterns ...string) *RealtimeService {
	if len(originPatterns) == 0 {
		originPatterns = []string{"*"}
	}
	return &RealtimeService{
		sessions:       make(map[uuid.UUID]*realtimeSession),
		originPatterns: originPatterns,
	}
}

// Handle держит соединение открытым до закрытия клиентом. Входящие сообщения игнорируются.
func (rs *RealtimeService) Handle(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: rs.originPatterns,
	})
	if err != nil {
		slog.Error("Open realtime websocket connection", "err", err)
		return
	}
	defer c.CloseNow()

	conId := uuid.Must(uuid.NewV4())

	ctx, cancel := context.WithCancel(c.CloseRead(req.Context()))
	defer cancel()
	session := &realtimeSession{
		conn: c,
		send: make(chan ChangeEvent, sendBuffer),
		stop: cancel,
	}

	rs.mutex.Lock()
	rs.sessions[conId] = session
	rs.mutex.Unlock()

	go rs.pingLoop(conId, c)

	rs.writeLoop(ctx, conId, session)

	rs.remove(conId)
	c.Close(websocket.StatusNormalClosure, "")
}

// writeLoop пишет события сессии до отмены контекста или первой ошибки записи.
func (rs *RealtimeService) writeLoop(ctx context.Context, conId uuid.UUID, s *realtimeSession) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, s.conn, msg)
			cancel()
			if err != nil {
				slog.Error("Write change event to websocket", "sessionId", conId, "err", err)
				return
			}
		}
	}
}

func (rs *RealtimeService) Sessions() int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	return len(rs.sessions)
}

// Broadcast ставит событие в очередь каждой сессии и не ждет записи.
// Сессия с заполненной очередью отключается. nil сервис ничего не делает.
func (rs *RealtimeService) Broadcast(table, action, id string) {
	if rs == nil {
		return
	}
	msg := ChangeEvent{
		Table:  table,
		Action: action,
		Id:     id,
		SentAt: time.Now().UTC(),
	}

	rs.mutex.RLock()
	sessions := make(map[uuid.UUID]*realtimeSession, len(rs.sessions))
	for id, s := range rs.sessions {
		sessions[id] = s
	}
	rs.mutex.RUnlock()

	for conId, session := range sessions {
		select {
		case session.send <- msg:
		default:
			slog.Warn("Realtime client is too slow, drop connection", "sessionId", conId)
			rs.remove(conId)
			session.stop()
		}
	}
}

func (rs *RealtimeService) CloseAll() {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	for id, s := range rs.sessions {
		if s.conn != nil {
			s.conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
		s.stop()
		delete(rs.sessions, id)
	}
}

func (rs *RealtimeService) remove(conId uuid.UUID) {
	rs.mutex.Lock()
	delete(rs.sessions, conId)
	rs.mutex.Unlock()
}

func (rs *RealtimeService) pingLoop(sessionId uuid.UUID, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		rs.mutex.RLock()
		_, alive := rs.sessions[sessionId]
		rs.mutex.RUnlock()
		if !alive {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := conn.Ping(ctx)
		cancel()
		if err != nil {
			slog.Debug("Ping to realtime websocket failed", "sessionId", sessionId, "err", err)
			rs.remove(sessionId)
			conn.Close(websocket.StatusNormalClosure, "Ping failed, connection closed")
			return
		}
	}
}
