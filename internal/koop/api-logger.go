// Обработка ошибок API: ответ с кодом из каталога apierrors и запись в лог
// с методом, адресом, пользователем и местом вызова.
package koop

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/editor"
	"github.com/tarimkoop/koop/internal/koop/editor/lexical"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

// Возврат ошибки 400 с универсальным сообщением
func EError(c echo.Context, err error) error {
	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		return EErrorDefined(c, definedErr)
	}
	if de, ok := editorError(err); ok {
		return EErrorDefined(c, de)
	}

	var user *dao.User
	if ctx, ok := c.(AuthContext); ok {
		user = ctx.User
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", userEmail(user),
			getCallerFile(),
		)
		return EErrorDefined(c, apierrors.ErrGeneric)
	}

	var te *errStack.TrackerError
	if errors.As(err, &te) {
		te.AddContext("user", userEmail(user))
		errStack.LogError(c, te)
		return EErrorDefined(c, apierrors.ErrInternal)
	}

	slog.Error("API error",
		"err", err,
		"method", c.Request().Method,
		"url", c.Request().URL,
		"user", userEmail(user),
		getCallerFile(),
	)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> (404 не логируется)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err != nil {
		er.Err = err.Error()
	}
	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Неизвестный статус заменяется на 400.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// editorError переводит ошибки редактора в ошибки каталога.
func editorError(err error) (apierrors.DefinedError, bool) {
	switch {
	case err == nil:
		return apierrors.DefinedError{}, false
	case errors.Is(err, editor.ErrSessionClosed):
		return apierrors.ErrEditorClosed, true
	case errors.Is(err, editor.ErrExport):
		return apierrors.ErrEditorExport, true
	case errors.Is(err, lexical.ErrInvalidSnapshot):
		return apierrors.ErrEditorSnapshot, true
	case errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, editor.ErrInvalidFormat),
		errors.Is(err, editor.ErrInvalidBlockType),
		errors.Is(err, editor.ErrInvalidAlign),
		errors.Is(err, editor.ErrInvalidColor):
		return apierrors.ErrEditorCommand.WithFormattedMessage(err.Error()), true
	}
	return apierrors.DefinedError{}, false
}

func userEmail(u *dao.User) string {
	if u == nil {
		return ""
	}
	return u.Email
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
