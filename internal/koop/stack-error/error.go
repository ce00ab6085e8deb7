// Пакет запоминает путь ошибки через слои сервиса и контекст для структурированного лога.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrackerError накапливает места, через которые прошла ошибка.
type TrackerError struct {
	Context map[string]any
	Frames  []string
	cause   error
}

// TrackErrorStack оборачивает err или дописывает место вызова в уже обернутую ошибку.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{Context: make(map[string]any), cause: err}
	}
	te.Frames = append(te.Frames, caller(2))
	return te
}

// AddContext не перезаписывает уже добавленный ключ.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

func (te *TrackerError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(te.Context)+2)
	attrs = append(attrs, slog.String("err", te.Error()), slog.Any("stack", te.Frames))
	for _, k := range slices.Sorted(maps.Keys(te.Context)) {
		attrs = append(attrs, slog.Any(k, te.Context[k]))
	}
	return slog.GroupValue(attrs...)
}

// LogError пишет ошибку со стеком и контекстом. c может быть nil для фоновых задач.
func LogError(c echo.Context, err error) {
	logger := slog.Default()
	if c != nil {
		logger = logger.With("method", c.Request().Method, "url", c.Request().URL.String())
	}

	var te *TrackerError
	if errors.As(err, &te) {
		logger.Error("Tracked error", "error", te)
		return
	}
	logger.Error("Untracked error", "err", err)
}

func caller(skip int) string {
	pc, path, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	name := "?"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	return fmt.Sprintf("%s:%d %s", filepath.Base(path), line, name)
}
