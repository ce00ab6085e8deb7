package koop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarimkoop/koop/internal/koop/business"
	"github.com/tarimkoop/koop/internal/koop/config"
	"github.com/tarimkoop/koop/internal/koop/editor"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
)

func dialEditor(t *testing.T, env *testEnv, token string) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(env.e)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/auth/editor/ws/", &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

// waitFrame читает кадры, пока не придет подходящий.
func waitFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(EditorFrame) bool) EditorFrame {
	t.Helper()
	for {
		var frame EditorFrame
		require.NoError(t, wsjson.Read(ctx, conn, &frame))
		if match(frame) {
			return frame
		}
	}
}

func TestEditorSocket(t *testing.T) {
	env := newTestEnv(t)
	conn, ctx := dialEditor(t, env, env.login())

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "init", "html": "<p>merhaba</p>"}))

	var first EditorFrame
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	assert.Equal(t, editorFrameState, first.Type)
	require.NotNil(t, first.Toolbar)
	assert.Empty(t, first.Placeholder)

	loaded := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameChange })
	assert.Equal(t, "<p>merhaba</p>", loaded.Markup)
	doc, err := lexical.ParseString(loaded.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, "merhaba", doc.PlainText())

	require.NoError(t, wsjson.Write(ctx, conn, editor.Command{
		Type:      editor.CommandToggleFormat,
		Selection: editor.Range(0, 0, 0, 7),
		Format:    editor.FormatBold,
	}))
	state := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameState })
	require.NotNil(t, state.Toolbar)
	assert.True(t, state.Toolbar.Bold)
	assert.True(t, state.Toolbar.CanUndo)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"type": "flush"}))
	changed := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameChange })
	assert.Equal(t, "<p><strong>merhaba</strong></p>", changed.Markup)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"type": "paste"}))
	failed := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameError })
	require.NotNil(t, failed.Error)
	assert.Equal(t, 4001, failed.Error.Code)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "set_text_color", "color": "kırmızı"}))
	failed = waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameError })
	assert.Equal(t, 4001, failed.Error.Code)
}

func TestEditorSocketEmptyDocument(t *testing.T) {
	env := newTestEnv(t)
	conn, ctx := dialEditor(t, env, env.login())

	require.NoError(t, wsjson.Write(ctx, conn, map[string]any{"type": "init", "placeholder": "Haber metni"}))
	first := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameState })
	assert.Equal(t, "Haber metni", first.Placeholder)

	// команда без init в первом сообщении тоже допустима, ввод текста запускает экспорт
	require.NoError(t, wsjson.Write(ctx, conn, editor.Command{Type: editor.CommandInsertText, Selection: editor.Caret(0, 0), Text: "a"}))
	state := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameState })
	assert.Empty(t, state.Placeholder)

	changed := waitFrame(t, ctx, conn, func(f EditorFrame) bool { return f.Type == editorFrameChange })
	assert.Equal(t, "<p>a</p>", changed.Markup)
}

func TestEditorSocketRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/auth/editor/ws/", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRenderRichText(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()

	rec := env.request(http.MethodPost, "/api/auth/editor/render/", RenderRequest{
		Html: `<h1>Başlık</h1><p onclick="x()">Metin <script>alert(1)</script>burada</p>`,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[RenderResponse](t, rec)
	assert.Contains(t, resp.Html, "<h2>Başlık</h2>")
	assert.NotContains(t, resp.Html, "script")
	assert.NotContains(t, resp.Html, "onclick")
	assert.Contains(t, resp.Text, "Metin")
	assert.NotNil(t, resp.State)
	assert.Equal(t, business.Excerpt(resp.Text), resp.Excerpt)

	rec = env.request(http.MethodPost, "/api/auth/editor/render/", RenderRequest{}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[RenderResponse](t, rec)
	assert.Empty(t, empty.Html)
	assert.Nil(t, empty.State)
}

func TestEditorOriginPatterns(t *testing.T) {
	s := &Services{cfg: &config.Config{WebURL: &url.URL{Scheme: "https", Host: "koop.example.org"}}}
	assert.Equal(t, []string{"koop.example.org"}, s.originPatterns())

	s.cfg.WebURL = &url.URL{Path: "/relative"}
	assert.Empty(t, s.originPatterns())

	s.cfg.WebURL = nil
	assert.Empty(t, s.originPatterns())
}

func TestEditorSocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()
	srv := httptest.NewServer(env.e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dial := func(origin string) (*websocket.Conn, *http.Response, error) {
		return websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/auth/editor/ws/", &websocket.DialOptions{
			HTTPHeader: http.Header{
				"Authorization": []string{"Bearer " + token},
				"Origin":        []string{origin},
			},
		})
	}

	_, resp, err := dial("https://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial("https://koop.example.org")
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}
