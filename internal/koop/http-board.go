package koop

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/dao"
)

type BoardResponse struct {
	Board []dao.BoardMember `json:"board"`
	Audit []dao.BoardMember `json:"audit"`
}

func (s *Services) AddBoardServices(public *echo.Group, admin *echo.Group) {
	public.GET("board/", s.getBoard)

	admin.GET("board/", s.getBoardList)
	admin.POST("board/", s.createBoardMember)
	admin.PATCH("board/:boardMemberId/", s.updateBoardMember)
	admin.DELETE("board/:boardMemberId/", s.deleteBoardMember)
}

// getBoard godoc
// @id getBoard
// @Summary Правление: состав правления и ревизионной комиссии
// @Tags Board
// @Produce json
// @Success 200 {object} BoardResponse "Правление и ревизионная комиссия"
// @Router /api/board/ [get]
func (s *Services) getBoard(c echo.Context) error {
	var members []dao.BoardMember
	if err := dao.Board(s.db).Find(&members).Error; err != nil {
		return EError(c, err)
	}
	resp := BoardResponse{Board: []dao.BoardMember{}, Audit: []dao.BoardMember{}}
	for _, m := range members {
		if m.Role == dao.BoardRoleAudit {
			resp.Audit = append(resp.Audit, m)
		} else {
			resp.Board = append(resp.Board, m)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// getBoardList godoc
// @id getBoardList
// @Summary Правление (админ): список
// @Tags Board
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dao.BoardMember "Члены правления"
// @Router /api/auth/board/ [get]
func (s *Services) getBoardList(c echo.Context) error {
	var members []dao.BoardMember
	if err := dao.Board(s.db).Find(&members).Error; err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// createBoardMember godoc
// @id createBoardMember
// @Summary Правление (админ): добавление
// @Tags Board
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body BoardMemberRequest true "Член правления"
// @Success 201 {object} dao.BoardMember "Добавленный член правления"
// @Failure 400 {object} apierrors.DefinedError "Ошибка запроса"
// @Router /api/auth/board/ [post]
func (s *Services) createBoardMember(c echo.Context) error {
	var req BoardMemberRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	bm, err := s.bl.CreateBoardMember(in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, bm)
}

// updateBoardMember godoc
// @id updateBoardMember
// @Summary Правление (админ): изменение
// @Tags Board
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param boardMemberId path string true "ID члена правления"
// @Param data body BoardMemberRequest true "Член правления"
// @Success 200 {object} dao.BoardMember "Измененный член правления"
// @Failure 404 {object} apierrors.DefinedError "Член правления не найден"
// @Router /api/auth/board/{boardMemberId}/ [patch]
func (s *Services) updateBoardMember(c echo.Context) error {
	id, err := uuidParam(c, "boardMemberId")
	if err != nil {
		return EError(c, err)
	}
	var req BoardMemberRequest
	if err := bindRequest(c, &req); err != nil {
		return EError(c, err)
	}
	in, err := req.Bind()
	if err != nil {
		return EError(c, err)
	}
	bm, err := s.bl.UpdateBoardMember(id, in)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, bm)
}

// deleteBoardMember godoc
// @id deleteBoardMember
// @Summary Правление (админ): удаление
// @Tags Board
// @Security ApiKeyAuth
// @Param boardMemberId path string true "ID члена правления"
// @Success 200 "Член правления удален"
// @Router /api/auth/board/{boardMemberId}/ [delete]
func (s *Services) deleteBoardMember(c echo.Context) error {
	id, err := uuidParam(c, "boardMemberId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.bl.DeleteBoardMember(id); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
