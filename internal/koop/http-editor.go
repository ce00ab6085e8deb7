// Живой редактор: сессия editor.Session на каждое вебсокет соединение администратора.
//
// Протокол:
//   - первое сообщение может быть {"type":"init","html":...,"state":...,"placeholder":...};
//   - остальные сообщения - команды editor.Command или {"type":"flush"};
//   - сервер отвечает кадрами "state" (панель форматирования), "change" (экспорт
//     после затихания изменений) и "error".
package koop

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/business"
	"github.com/tarimkoop/koop/internal/koop/editor"
)

const (
	editorMessageInit  editor.CommandType = "init"
	editorMessageFlush editor.CommandType = "flush"

	editorFrameState  = "state"
	editorFrameChange = "change"
	editorFrameError  = "error"

	editorReadLimit    = 4 << 20
	editorWriteTimeout = 5 * time.Second
)

type EditorMessage struct {
	editor.Command
	Html        string        `json:"html,omitempty"`
	State       SnapshotField `json:"state,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
}

type EditorFrame struct {
	Type        string                  `json:"type"`
	Markup      string                  `json:"markup,omitempty"`
	Snapshot    string                  `json:"snapshot,omitempty"`
	Toolbar     *editor.ToolbarState    `json:"toolbar,omitempty"`
	Placeholder string                  `json:"placeholder,omitempty"`
	Error       *apierrors.DefinedError `json:"error,omitempty"`
}

type RenderResponse struct {
	Html    string `json:"html"`
	State   any    `json:"state"`
	Text    string `json:"text"`
	Excerpt string `json:"excerpt"`
}

func (s *Services) AddEditorServices(admin *echo.Group) {
	admin.GET("editor/ws/", s.editorSocket)
	admin.POST("editor/render/", s.renderRichText)
}

// editorConn сериализует запись кадров: колбэки сессии приходят из горутины таймера.
type editorConn struct {
	conn *websocket.Conn
	ctx  context.Context
	mu   sync.Mutex

	pendingMarkup string
}

func (ec *editorConn) send(frame EditorFrame) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ctx, cancel := context.WithTimeout(ec.ctx, editorWriteTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, ec.conn, frame); err != nil {
		slog.Debug("Write editor frame", "type", frame.Type, "err", err)
	}
}

func (ec *editorConn) sendError(err error) {
	de, ok := editorError(err)
	if !ok {
		var defined apierrors.DefinedError
		if errors.As(err, &defined) {
			de = defined
		} else {
			de = apierrors.ErrGeneric
		}
	}
	ec.send(EditorFrame{Type: editorFrameError, Error: &de})
}

// editorSocket godoc
// @id editorSocket
// @Summary Редактор: вебсокет сессии редактирования
// @Description Команды панели форматирования применяются на сервере, экспорт приходит после затихания изменений
// @Tags Editor
// @Security ApiKeyAuth
// @Router /api/auth/editor/ws/ [get]
func (s *Services) editorSocket(c echo.Context) error {
	user := currentUser(c)
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		slog.Error("Accept editor websocket", "user", userEmail(user), "err", err)
		return nil
	}
	defer conn.CloseNow()
	conn.SetReadLimit(editorReadLimit)

	ctx := c.Request().Context()
	ec := &editorConn{conn: conn, ctx: ctx}

	var first EditorMessage
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		return nil
	}

	in := editor.Input{}
	if first.Type == editorMessageInit {
		in = editor.Input{Value: first.Html, InitialSnapshot: string(first.State), Placeholder: first.Placeholder}
	}

	s.metrics.editorSessions.Inc()
	defer s.metrics.editorSessions.Dec()

	session := editor.Mount(s.editorCfg, in, editor.Output{
		OnChange: func(markup string) {
			s.metrics.exportResult(nil)
			ec.pendingMarkup = markup
		},
		OnSnapshotChange: func(snapshot string) {
			ec.send(EditorFrame{Type: editorFrameChange, Markup: ec.pendingMarkup, Snapshot: snapshot})
		},
		OnError: func(err error) {
			s.metrics.exportResult(err)
			ec.sendError(err)
		},
	})
	defer session.Close()

	state := session.ToolbarState()
	frame := EditorFrame{Type: editorFrameState, Toolbar: &state}
	if strings.TrimSpace(in.Value) == "" && strings.TrimSpace(in.InitialSnapshot) == "" {
		frame.Placeholder = session.Placeholder()
	}
	ec.send(frame)

	msg := first
	if msg.Type == editorMessageInit {
		msg = EditorMessage{}
	}
	for {
		if msg.Type != "" {
			s.handleEditorMessage(ec, session, msg)
		}

		msg = EditorMessage{}
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				slog.Debug("Editor websocket closed", "user", userEmail(user), "err", err)
			}
			return nil
		}
	}
}

func (s *Services) handleEditorMessage(ec *editorConn, session *editor.Session, msg EditorMessage) {
	switch msg.Type {
	case editorMessageFlush:
		session.Flush()
		return
	case editorMessageInit:
		ec.sendError(apierrors.ErrInvalidRequest.WithFormattedMessage("init"))
		return
	}

	state, err := session.Dispatch(msg.Command)
	if err != nil {
		ec.sendError(err)
		return
	}
	ec.send(EditorFrame{Type: editorFrameState, Toolbar: &state, Placeholder: session.Placeholder()})
}

// renderRichText godoc
// @id renderRichText
// @Summary Редактор: нормализация содержимого
// @Description Загружает снимок или разметку, очищает и возвращает результат экспорта, текст и краткое описание
// @Tags Editor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body RenderRequest true "Разметка и снимок"
// @Success 200 {object} RenderResponse "Результат экспорта"
// @Failure 400 {object} apierrors.DefinedError "Ошибка экспорта"
// @Router /api/auth/editor/render/ [post]
func (s *Services) renderRichText(c echo.Context) error {
	var req RenderRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	rc, err := business.NormalizeRichText(req.Html, string(req.State))
	s.metrics.exportResult(err)
	if err != nil {
		return EError(c, err)
	}
	html, state := rc.Stored()
	resp := RenderResponse{
		Html:    html.String(),
		Text:    rc.Text,
		Excerpt: business.Excerpt(rc.Text),
	}
	if state != nil {
		resp.State = state
	}
	return c.JSON(http.StatusOK, resp)
}

// originPatterns - хост сайта для проверки Origin вебсокетов.
// Без хоста разрешен только тот же источник, что и у запроса.
func (s *Services) originPatterns() []string {
	if s.cfg.WebURL != nil && s.cfg.WebURL.Host != "" {
		return []string{s.cfg.WebURL.Host}
	}
	return nil
}
