package koop

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
)

func (s *Services) AddNewsServices(public *echo.Group, admin *echo.Group) {
	public.GET("news/", s.getPublishedNews)
	public.GET("news/:slug/", s.getNewsBySlug)

	admin.GET("news/", s.getNewsList)
	admin.POST("news/", s.createNews)
	admin.GET("news/:newsId/", s.getNews)
	admin.PATCH("news/:newsId/", s.updateNews)
	admin.DELETE("news/:newsId/", s.deleteNews)
}

// getPublishedNews godoc
// @id getPublishedNews
// @Summary Новости: опубликованные новости
// @Description Возвращает опубликованные новости, новые первыми. Поддерживает фильтр по тегу.
// @Tags News
// @Produce json
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(20)
// @Param tag query string false "Тег"
// @Success 200 {object} dao.PaginationResponse{result=[]dao.NewsItem} "Список новостей"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Router /api/news/ [get]
func (s *Services) getPublishedNews(c echo.Context) error {
	query := dao.PublishedNews(s.db)
	if tag := c.QueryParam("tag"); tag != "" {
		var ids []string
		var all []dao.NewsItem
		if err := dao.PublishedNews(s.db).Select("id", "tags").Find(&all).Error; err != nil {
			return EError(c, err)
		}
		for _, n := range all {
			if n.Tags.Contains(tag) {
				ids = append(ids, n.ID.String())
			}
		}
		// пустая строка не совпадает ни с одним id, IN () недопустим
		query = query.Where("id IN ?", append(ids, ""))
	}
	var news []dao.NewsItem
	return paginate(c, query, &news)
}

// getNewsBySlug godoc
// @id getNewsBySlug
// @Summary Новости: новость по slug
// @Description Возвращает опубликованную новость и увеличивает счетчик просмотров
// @Tags News
// @Produce json
// @Param slug path string true "Slug новости"
// @Success 200 {object} dao.NewsItem "Новость"
// @Failure 404 {object} apierrors.DefinedError "Новость не найдена"
// @Router /api/news/{slug}/ [get]
func (s *Services) getNewsBySlug(c echo.Context) error {
	news, err := dao.NewsBySlug(s.db, c.Param("slug"))
	if err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrNewsNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, news)
}

// getNewsList godoc
// @id getNewsList
// @Summary Новости (админ): список всех новостей
// @Tags News
// @Produce json
// @Security ApiKeyAuth
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(20)
// @Param published query string false "yes, no или all" default(all)
// @Success 200 {object} dao.PaginationResponse{result=[]dao.NewsItem} "Список новостей"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Router /api/auth/news/ [get]
func (s *Services) getNewsList(c echo.Context) error {
	query, err := publishFilter(c, s.db.Model(&dao.NewsItem{}).Preload("FeaturedImage").Order("created_at desc"))
	if err != nil {
		return EError(c, err)
	}
	var news []dao.NewsItem
	return paginate(c, query, &news)
}

// getNews godoc
// @id getNews
// @Summary Новости (админ): новость по id
// @Tags News
// @Produce json
// @Security ApiKeyAuth
// @Param newsId path string true "ID новости"
// @Success 200 {object} dao.NewsItem "Новость"
// @Failure 404 {object} apierrors.DefinedError "Новость не найдена"
// @Router /api/auth/news/{newsId}/ [get]
func (s *Services) getNews(c echo.Context) error {
	id, err := uuidParam(c, "newsId")
	if err != nil {
		return EError(c, err)
	}
	var news dao.NewsItem
	if err := s.db.Preload("FeaturedImage").Where("id = ?", id).First(&news).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrNewsNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, news)
}

// createNews godoc
// @id createNews
// @Summary Новости (админ): создание новости
// @Description Содержимое очищается и нормализуется через модель редактора. Slug строится из заголовка.
// @Tags News
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body NewsRequest true "Новость"
// @Success 201 {object} dao.NewsItem "Созданная новость"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Router /api/auth/news/ [post]
func (s *Services) createNews(c echo.Context) error {
	var req NewsRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	news, err := s.bl.CreateNews(currentUser(c), in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, news)
}

// updateNews godoc
// @id updateNews
// @Summary Новости (админ): изменение новости
// @Tags News
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param newsId path string true "ID новости"
// @Param data body NewsRequest true "Новость"
// @Success 200 {object} dao.NewsItem "Измененная новость"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Failure 404 {object} apierrors.DefinedError "Новость не найдена"
// @Router /api/auth/news/{newsId}/ [patch]
func (s *Services) updateNews(c echo.Context) error {
	id, err := uuidParam(c, "newsId")
	if err != nil {
		return EError(c, err)
	}
	var req NewsRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	news, err := s.bl.UpdateNews(id, in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, news)
}

// deleteNews godoc
// @id deleteNews
// @Summary Новости (админ): удаление новости
// @Tags News
// @Security ApiKeyAuth
// @Param newsId path string true "ID новости"
// @Success 200 "Новость удалена"
// @Failure 404 {object} apierrors.DefinedError "Новость не найдена"
// @Router /api/auth/news/{newsId}/ [delete]
func (s *Services) deleteNews(c echo.Context) error {
	id, err := uuidParam(c, "newsId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.bl.DeleteNews(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
