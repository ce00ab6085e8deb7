package koop

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/dao"
)

func (s *Services) AddMemberServices(public *echo.Group, admin *echo.Group) {
	public.GET("members/", s.getActiveMembers)

	admin.GET("members/", s.getMemberList)
	admin.POST("members/", s.createMember)
	admin.PATCH("members/:memberId/", s.updateMember)
	admin.DELETE("members/:memberId/", s.deleteMember)
}

// getActiveMembers godoc
// @id getActiveMembers
// @Summary Члены: список активных членов кооператива
// @Tags Members
// @Produce json
// @Success 200 {array} dao.Member "Члены кооператива"
// @Router /api/members/ [get]
func (s *Services) getActiveMembers(c echo.Context) error {
	var members []dao.Member
	if err := dao.ActiveMembers(s.db).Select("id", "name", "surname", "position", "department", "join_date", "role").Find(&members).Error; err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// getMemberList godoc
// @id getMemberList
// @Summary Члены (админ): список всех членов
// @Description Поиск по имени, фамилии или email
// @Tags Members
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "Строка поиска"
// @Success 200 {object} dao.PaginationResponse{result=[]dao.Member} "Члены кооператива"
// @Router /api/auth/members/ [get]
func (s *Services) getMemberList(c echo.Context) error {
	query := s.db.Model(&dao.Member{}).Order("surname").Order("name")
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(surname) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	var members []dao.Member
	return paginate(c, query, &members)
}

// createMember godoc
// @id createMember
// @Summary Члены (админ): добавление члена
// @Description Полное имя делится на имя (первое слово) и фамилию
// @Tags Members
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body MemberRequest true "Член кооператива"
// @Success 201 {object} dao.Member "Добавленный член"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Failure 409 {object} apierrors.DefinedError "Email уже используется"
// @Router /api/auth/members/ [post]
func (s *Services) createMember(c echo.Context) error {
	var req MemberRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	m, err := s.bl.CreateMember(req.Bind())
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// updateMember godoc
// @id updateMember
// @Summary Члены (админ): изменение члена
// @Tags Members
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param memberId path string true "ID члена"
// @Param data body MemberRequest true "Член кооператива"
// @Success 200 {object} dao.Member "Измененный член"
// @Failure 404 {object} apierrors.DefinedError "Член не найден"
// @Router /api/auth/members/{memberId}/ [patch]
func (s *Services) updateMember(c echo.Context) error {
	id, err := uuidParam(c, "memberId")
	if err != nil {
		return EError(c, err)
	}
	var req MemberRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	m, err := s.bl.UpdateMember(id, req.Bind())
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// deleteMember godoc
// @id deleteMember
// @Summary Члены (админ): удаление члена
// @Tags Members
// @Security ApiKeyAuth
// @Param memberId path string true "ID члена"
// @Success 200 "Член удален"
// @Failure 404 {object} apierrors.DefinedError "Член не найден"
// @Router /api/auth/members/{memberId}/ [delete]
func (s *Services) deleteMember(c echo.Context) error {
	id, err := uuidParam(c, "memberId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.bl.DeleteMember(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
