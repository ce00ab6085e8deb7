package koop

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarimkoop/koop/internal/koop/dao"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{R: 200, G: 120, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (env *testEnv) upload(token, name string, data []byte) *httptest.ResponseRecorder {
	env.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(env.t, err)
	_, err = fw.Write(data)
	require.NoError(env.t, err)
	require.NoError(env.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/files/", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestFileUpload(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()

	rec := env.upload(token, "tarla.png", testPNG(t, 800, 400))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[dao.FileAsset](t, rec)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, "tarla.png", asset.Name)
	require.True(t, asset.ThumbnailId.Valid)

	rec = env.request(http.MethodGet, asset.URL(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "immutable")

	rec = env.request(http.MethodGet, asset.URL()+"?thumb=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	thumb, err := jpeg.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 512, thumb.Bounds().Dx())
	assert.Equal(t, 256, thumb.Bounds().Dy())

	// файл, на который ссылается новость, сохраняется в выдаче новости
	imageId := asset.ID.String()
	rec = env.request(http.MethodPost, "/api/auth/news/", NewsRequest{Title: "Görselli", Content: "<p>x</p>", IsPublished: true, FeaturedImageId: &imageId}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.request(http.MethodDelete, "/api/auth/files/"+asset.ID.String()+"/", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, asset.URL(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 3001, errorCode(t, rec))

	var news dao.NewsItem
	require.NoError(t, env.db.First(&news).Error)
	assert.False(t, news.FeaturedImageId.Valid)
}

func TestFileUploadRejects(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()

	rec := env.upload(token, "notlar.txt", []byte("bu bir görsel değil"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3003, errorCode(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/files/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, 3005, errorCode(t, rec))

	rec = env.request(http.MethodPost, "/api/auth/news/", NewsRequest{Title: "x", Content: "<p>x</p>", FeaturedImageId: ptr("abc")}, token)
	assert.Equal(t, 5001, errorCode(t, rec))
}

func ptr[T any](v T) *T {
	return &v
}
