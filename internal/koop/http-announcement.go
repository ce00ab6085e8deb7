package koop

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
)

func (s *Services) AddAnnouncementServices(public *echo.Group, admin *echo.Group) {
	public.GET("announcements/", s.getPublishedAnnouncements)
	public.GET("announcements/:slug/", s.getAnnouncementBySlug)

	admin.GET("announcements/", s.getAnnouncementList)
	admin.POST("announcements/", s.createAnnouncement)
	admin.GET("announcements/:announcementId/", s.getAnnouncement)
	admin.PATCH("announcements/:announcementId/", s.updateAnnouncement)
	admin.DELETE("announcements/:announcementId/", s.deleteAnnouncement)
}

// getPublishedAnnouncements godoc
// @id getPublishedAnnouncements
// @Summary Объявления: опубликованные объявления
// @Description Важные объявления идут первыми, затем по дате
// @Tags Announcements
// @Produce json
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(20)
// @Success 200 {object} dao.PaginationResponse{result=[]dao.Announcement} "Список объявлений"
// @Router /api/announcements/ [get]
func (s *Services) getPublishedAnnouncements(c echo.Context) error {
	var list []dao.Announcement
	return paginate(c, dao.PublishedAnnouncements(s.db), &list)
}

// getAnnouncementBySlug godoc
// @id getAnnouncementBySlug
// @Summary Объявления: объявление по slug
// @Tags Announcements
// @Produce json
// @Param slug path string true "Slug объявления"
// @Success 200 {object} dao.Announcement "Объявление"
// @Failure 404 {object} apierrors.DefinedError "Объявление не найдено"
// @Router /api/announcements/{slug}/ [get]
func (s *Services) getAnnouncementBySlug(c echo.Context) error {
	a, err := dao.AnnouncementBySlug(s.db, c.Param("slug"))
	if err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrAnnouncementNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// getAnnouncementList godoc
// @id getAnnouncementList
// @Summary Объявления (админ): список всех объявлений
// @Tags Announcements
// @Produce json
// @Security ApiKeyAuth
// @Param published query string false "yes, no или all" default(all)
// @Success 200 {object} dao.PaginationResponse{result=[]dao.Announcement} "Список объявлений"
// @Router /api/auth/announcements/ [get]
func (s *Services) getAnnouncementList(c echo.Context) error {
	query, err := publishFilter(c, s.db.Model(&dao.Announcement{}).Order("date desc"))
	if err != nil {
		return EError(c, err)
	}
	var list []dao.Announcement
	return paginate(c, query, &list)
}

// getAnnouncement godoc
// @id getAnnouncement
// @Summary Объявления (админ): объявление по id
// @Tags Announcements
// @Produce json
// @Security ApiKeyAuth
// @Param announcementId path string true "ID объявления"
// @Success 200 {object} dao.Announcement "Объявление"
// @Failure 404 {object} apierrors.DefinedError "Объявление не найдено"
// @Router /api/auth/announcements/{announcementId}/ [get]
func (s *Services) getAnnouncement(c echo.Context) error {
	id, err := uuidParam(c, "announcementId")
	if err != nil {
		return EError(c, err)
	}
	var a dao.Announcement
	if err := s.db.Where("id = ?", id).First(&a).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrAnnouncementNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// createAnnouncement godoc
// @id createAnnouncement
// @Summary Объявления (админ): создание объявления
// @Tags Announcements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body AnnouncementRequest true "Объявление"
// @Success 201 {object} dao.Announcement "Созданное объявление"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Router /api/auth/announcements/ [post]
func (s *Services) createAnnouncement(c echo.Context) error {
	var req AnnouncementRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	a, err := s.bl.CreateAnnouncement(currentUser(c), req.Bind())
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// updateAnnouncement godoc
// @id updateAnnouncement
// @Summary Объявления (админ): изменение объявления
// @Tags Announcements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param announcementId path string true "ID объявления"
// @Param data body AnnouncementRequest true "Объявление"
// @Success 200 {object} dao.Announcement "Измененное объявление"
// @Failure 404 {object} apierrors.DefinedError "Объявление не найдено"
// @Router /api/auth/announcements/{announcementId}/ [patch]
func (s *Services) updateAnnouncement(c echo.Context) error {
	id, err := uuidParam(c, "announcementId")
	if err != nil {
		return EError(c, err)
	}
	var req AnnouncementRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	a, err := s.bl.UpdateAnnouncement(id, req.Bind())
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// deleteAnnouncement godoc
// @id deleteAnnouncement
// @Summary Объявления (админ): удаление объявления
// @Tags Announcements
// @Security ApiKeyAuth
// @Param announcementId path string true "ID объявления"
// @Success 200 "Объявление удалено"
// @Router /api/auth/announcements/{announcementId}/ [delete]
func (s *Services) deleteAnnouncement(c echo.Context) error {
	id, err := uuidParam(c, "announcementId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.bl.DeleteAnnouncement(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
