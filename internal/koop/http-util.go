package koop

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
)

// publishFilter применяет параметр ?published=yes|no|all к выборке администратора.
func publishFilter(c echo.Context, query *gorm.DB) (*gorm.DB, error) {
	state := c.QueryParam("published")
	switch state {
	case "", "all":
		return query, nil
	case "yes", "true":
		return query.Where("is_published = ?", true), nil
	case "no", "false":
		return query.Where("is_published = ?", false), nil
	}
	return nil, apierrors.ErrInvalidPublishState.WithFormattedMessage(state)
}

// paginate отдает страницу выборки в формате dao.PaginationResponse.
func paginate(c echo.Context, query *gorm.DB, target any) error {
	p, err := bindPagination(c)
	if err != nil {
		return EError(c, err)
	}
	resp, err := dao.PaginationRequest(p.Offset, p.Limit, query, target)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// currentUser - администратор из контекста аутентификации.
func currentUser(c echo.Context) *dao.User {
	if ctx, ok := c.(AuthContext); ok {
		return ctx.User
	}
	return nil
}
