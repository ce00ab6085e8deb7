package koop

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
)

func (s *Services) AddProjectServices(public *echo.Group, admin *echo.Group) {
	public.GET("projects/", s.getPublishedProjects)
	public.GET("projects/categories/", s.getProjectCategories)
	public.GET("projects/:slug/", s.getProjectBySlug)

	admin.GET("projects/", s.getProjectList)
	admin.POST("projects/", s.createProject)
	admin.GET("projects/:projectId/", s.getProject)
	admin.PATCH("projects/:projectId/", s.updateProject)
	admin.DELETE("projects/:projectId/", s.deleteProject)
}

// getPublishedProjects godoc
// @id getPublishedProjects
// @Summary Проекты: опубликованные проекты
// @Tags Projects
// @Produce json
// @Param category query string false "Категория"
// @Success 200 {object} dao.PaginationResponse{result=[]dao.Project} "Список проектов"
// @Failure 400 {object} apierrors.DefinedError "Неизвестная категория"
// @Router /api/projects/ [get]
func (s *Services) getPublishedProjects(c echo.Context) error {
	category := c.QueryParam("category")
	if category != "" && !dao.ValidProjectCategory(category) {
		return EErrorDefined(c, apierrors.ErrInvalidCategory.WithFormattedMessage(category))
	}
	var projects []dao.Project
	return paginate(c, dao.PublishedProjects(s.db, category), &projects)
}

// getProjectCategories godoc
// @id getProjectCategories
// @Summary Проекты: категории и статусы
// @Tags Projects
// @Produce json
// @Success 200 {object} map[string][]string "Категории и статусы"
// @Router /api/projects/categories/ [get]
func (s *Services) getProjectCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"categories": dao.ProjectCategories,
		"statuses":   dao.ProjectStatuses,
	})
}

// getProjectBySlug godoc
// @id getProjectBySlug
// @Summary Проекты: проект по slug
// @Tags Projects
// @Produce json
// @Param slug path string true "Slug проекта"
// @Success 200 {object} dao.Project "Проект"
// @Failure 404 {object} apierrors.DefinedError "Проект не найден"
// @Router /api/projects/{slug}/ [get]
func (s *Services) getProjectBySlug(c echo.Context) error {
	p, err := dao.ProjectBySlug(s.db, c.Param("slug"))
	if err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrProjectNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// getProjectList godoc
// @id getProjectList
// @Summary Проекты (админ): список всех проектов
// @Tags Projects
// @Produce json
// @Security ApiKeyAuth
// @Param published query string false "yes, no или all" default(all)
// @Success 200 {object} dao.PaginationResponse{result=[]dao.Project} "Список проектов"
// @Router /api/auth/projects/ [get]
func (s *Services) getProjectList(c echo.Context) error {
	query, err := publishFilter(c, s.db.Model(&dao.Project{}).Preload("FeaturedImage").Order("created_at desc"))
	if err != nil {
		return EError(c, err)
	}
	var projects []dao.Project
	return paginate(c, query, &projects)
}

// getProject godoc
// @id getProject
// @Summary Проекты (админ): проект по id
// @Tags Projects
// @Produce json
// @Security ApiKeyAuth
// @Param projectId path string true "ID проекта"
// @Success 200 {object} dao.Project "Проект"
// @Failure 404 {object} apierrors.DefinedError "Проект не найден"
// @Router /api/auth/projects/{projectId}/ [get]
func (s *Services) getProject(c echo.Context) error {
	id, err := uuidParam(c, "projectId")
	if err != nil {
		return EError(c, err)
	}
	var p dao.Project
	if err := s.db.Preload("FeaturedImage").Where("id = ?", id).First(&p).Error; err != nil {
		if dao.IsNotFound(err) {
			return EErrorDefined(c, apierrors.ErrProjectNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// createProject godoc
// @id createProject
// @Summary Проекты (админ): создание проекта
// @Tags Projects
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body ProjectRequest true "Проект"
// @Success 201 {object} dao.Project "Созданный проект"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Router /api/auth/projects/ [post]
func (s *Services) createProject(c echo.Context) error {
	var req ProjectRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	p, err := s.bl.CreateProject(in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// updateProject godoc
// @id updateProject
// @Summary Проекты (админ): изменение проекта
// @Tags Projects
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param projectId path string true "ID проекта"
// @Param data body ProjectRequest true "Проект"
// @Success 200 {object} dao.Project "Измененный проект"
// @Failure 404 {object} apierrors.DefinedError "Проект не найден"
// @Router /api/auth/projects/{projectId}/ [patch]
func (s *Services) updateProject(c echo.Context) error {
	id, err := uuidParam(c, "projectId")
	if err != nil {
		return EError(c, err)
	}
	var req ProjectRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	p, err := s.bl.UpdateProject(id, in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// deleteProject godoc
// @id deleteProject
// @Summary Проекты (админ): удаление проекта
// @Tags Projects
// @Security ApiKeyAuth
// @Param projectId path string true "ID проекта"
// @Success 200 "Проект удален"
// @Router /api/auth/projects/{projectId}/ [delete]
func (s *Services) deleteProject(c echo.Context) error {
	id, err := uuidParam(c, "projectId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.bl.DeleteProject(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
