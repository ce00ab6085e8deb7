package koop

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfnt/resize"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	filestorage "github.com/tarimkoop/koop/internal/koop/file-storage"
)

const (
	maxUploadSize = 10 << 20
	thumbnailSize = 512
)

func (s *Services) AddFileServices(public *echo.Group, admin *echo.Group) {
	public.GET("files/:fileId/", s.getFile)

	admin.POST("files/", s.uploadFile)
	admin.DELETE("files/:fileId/", s.deleteFile)
}

// uploadFile godoc
// @id uploadFile
// @Summary Файлы (админ): загрузка изображения
// @Description Сохраняет изображение и его уменьшенную копию до 512 точек по большей стороне
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "Изображение"
// @Success 201 {object} dao.FileAsset "Загруженный файл"
// @Failure 400 {object} apierrors.DefinedError "Файл не является изображением"
// @Failure 413 {object} apierrors.DefinedError "Файл слишком большой"
// @Router /api/auth/files/ [post]
func (s *Services) uploadFile(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadSize+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return EErrorDefined(c, apierrors.ErrFileTooLarge)
		}
		return EErrorDefined(c, apierrors.ErrFileFieldRequired)
	}
	if file.Size > maxUploadSize {
		return EErrorDefined(c, apierrors.ErrFileTooLarge)
	}

	data, err := readUpload(file)
	if err != nil {
		return EError(c, err)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return EErrorDefined(c, apierrors.ErrFileNotImage)
	}

	ctx := c.Request().Context()
	asset := dao.FileAsset{
		ID:          dao.GenUUID(),
		Name:        file.Filename,
		ContentType: contentType,
		FileSize:    int64(len(data)),
	}
	if user := currentUser(c); user != nil {
		id := user.ID.String()
		asset.CreatedById = &id
	}
	meta := &filestorage.Metadata{Kind: "image"}

	if err := s.storage.Save(ctx, data, asset.ID, contentType, meta); err != nil {
		slog.Error("Save uploaded file", "name", file.Filename, "err", err)
		return EErrorDefined(c, apierrors.ErrFileUploadFailed)
	}

	thumb, thumbSize, thumbType, err := imageThumbnail(bytes.NewReader(data), contentType)
	if err != nil {
		// webp и поврежденные изображения хранятся без миниатюры
		slog.Warn("Make thumbnail", "name", file.Filename, "type", contentType, "err", err)
	} else {
		thumbAsset := dao.FileAsset{
			ID:          dao.GenUUID(),
			CreatedById: asset.CreatedById,
			Name:        "thumb_" + file.Filename,
			ContentType: thumbType,
			FileSize:    int64(thumbSize),
		}
		if err := s.storage.SaveReader(ctx, thumb, int64(thumbSize), thumbAsset.ID, thumbType, &filestorage.Metadata{Kind: "thumbnail", EntityId: asset.ID.String()}); err != nil {
			slog.Error("Save thumbnail", "name", file.Filename, "err", err)
			return EErrorDefined(c, apierrors.ErrFileUploadFailed)
		}
		if err := s.db.Create(&thumbAsset).Error; err != nil {
			return EError(c, err)
		}
		asset.ThumbnailId.UUID = thumbAsset.ID
		asset.ThumbnailId.Valid = true
	}

	if err := s.db.Create(&asset).Error; err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, asset)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(io.LimitReader(src, maxUploadSize))
}

// getFile godoc
// @id getFile
// @Summary Файлы: получение файла
// @Tags Files
// @Param fileId path string true "ID файла"
// @Param thumb query bool false "Вернуть миниатюру"
// @Success 200 {file} binary "Содержимое файла"
// @Failure 404 {object} apierrors.DefinedError "Файл не найден"
// @Router /api/files/{fileId}/ [get]
func (s *Services) getFile(c echo.Context) error {
	id, err := uuidParam(c, "fileId")
	if err != nil {
		return EError(c, err)
	}

	var asset dao.FileAsset
	if err := s.db.Where("id = ?", id).First(&asset).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrFileNotFound)
		}
		return EError(c, err)
	}

	if c.QueryParam("thumb") != "" && asset.ThumbnailId.Valid {
		var thumb dao.FileAsset
		if err := s.db.Where("id = ?", asset.ThumbnailId.UUID).First(&thumb).Error; err == nil {
			asset = thumb
		}
	}

	r, err := s.storage.LoadReader(c.Request().Context(), asset.ID)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			return EErrorDefined(c, apierrors.ErrFileNotFound)
		}
		return EError(c, err)
	}
	defer r.Close()

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, asset.ContentType, r)
}

// deleteFile godoc
// @id deleteFile
// @Summary Файлы (админ): удаление файла
// @Description Удаляет файл, его миниатюру и ссылки на него из записей
// @Tags Files
// @Security ApiKeyAuth
// @Param fileId path string true "ID файла"
// @Success 200 "Файл удален"
// @Failure 404 {object} apierrors.DefinedError "Файл не найден"
// @Router /api/auth/files/{fileId}/ [delete]
func (s *Services) deleteFile(c echo.Context) error {
	id, err := uuidParam(c, "fileId")
	if err != nil {
		return EError(c, err)
	}
	var asset dao.FileAsset
	if err := s.db.Where("id = ?", id).First(&asset).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrFileNotFound)
		}
		return EError(c, err)
	}

	ids := []string{asset.ID.String()}
	if asset.ThumbnailId.Valid {
		ids = append(ids, asset.ThumbnailId.UUID.String())
	}
	if err := dao.DeleteAssets(s.db, ids); err != nil {
		return EError(c, err)
	}

	ctx := c.Request().Context()
	if err := s.storage.Delete(ctx, asset.ID); err != nil {
		slog.Error("Delete file from storage", "id", asset.ID, "err", err)
	}
	if asset.ThumbnailId.Valid {
		if err := s.storage.Delete(ctx, asset.ThumbnailId.UUID); err != nil {
			slog.Error("Delete thumbnail from storage", "id", asset.ThumbnailId.UUID, "err", err)
		}
	}
	return c.NoContent(http.StatusOK)
}

func imageThumbnail(r io.Reader, contentType string) (io.Reader, int, string, error) {
	var err error
	dataType := "image/jpeg"

	buf := new(bytes.Buffer)
	switch contentType {
	case "image/gif":
		// анимация не пережимается
		if _, err = io.Copy(buf, r); err != nil {
			return nil, 0, "", err
		}
		dataType = "image/gif"
	default:
		var img image.Image
		img, _, err = image.Decode(r)
		if err != nil {
			return nil, 0, "", err
		}
		thmb := resize.Thumbnail(thumbnailSize, thumbnailSize, img, resize.Lanczos3)
		err = jpeg.Encode(buf, thmb, &jpeg.Options{Quality: 80})
	}
	return buf, buf.Len(), dataType, err
}
