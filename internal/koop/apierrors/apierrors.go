// Пакет содержит ошибки API сервиса кооператива. Каждая ошибка имеет код, статус HTTP
// и описание на английском и турецком языках.
//
// Диапазоны кодов:
//   - 1*** - авторизация и сессии
//   - 2*** - содержимое сайта (новости, объявления, члены, правление, проекты)
//   - 3*** - файлы
//   - 4*** - редактор
//   - 5*** - валидация запросов
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	TrErr      string `json:"tr_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	ErrGeneric       = DefinedError{Code: 1, StatusCode: http.StatusBadRequest, Err: "bad request", TrErr: "Hatalı istek"}
	ErrEntityToLarge = DefinedError{Code: 2, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", TrErr: "İstek boyutu çok büyük"}
	ErrInternal      = DefinedError{Code: 3, StatusCode: http.StatusInternalServerError, Err: "internal server error", TrErr: "Sunucu hatası"}

	// 1*** - auth errors
	ErrFailedLogin              = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "invalid credentials", TrErr: "E-posta veya şifre hatalı"}
	ErrCaptchaFail              = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "invalid captcha", TrErr: "Doğrulama başarısız"}
	ErrLoginCredentialsRequired = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "both email and password are required", TrErr: "E-posta ve şifre boş olamaz"}
	ErrLoginTriesExceed         = DefinedError{Code: 1004, StatusCode: http.StatusUnauthorized, Err: "login tries exceed, your account is blocked", TrErr: "Hesap kilitlendi"}
	ErrBlockedUntil             = DefinedError{Code: 1005, StatusCode: http.StatusUnauthorized, Err: "blocked until %s", TrErr: "Hesap %s tarihine kadar kilitli"}
	ErrAccessTokenRequired      = DefinedError{Code: 1006, StatusCode: http.StatusUnauthorized, Err: "access token is required", TrErr: "Erişim anahtarı gerekli"}
	ErrNotEnoughRights          = DefinedError{Code: 1007, StatusCode: http.StatusForbidden, Err: "not enough rights", TrErr: "Bu işlem için yetkiniz yok"}

	// 11** - session errors
	ErrRefreshTokenRequired = DefinedError{Code: 1101, StatusCode: http.StatusUnauthorized, Err: "refresh token is required", TrErr: "Yenileme anahtarı gerekli"}
	ErrTokenExpired         = DefinedError{Code: 1102, StatusCode: http.StatusUnauthorized, Err: "token expired", TrErr: "Oturum süresi doldu"}
	ErrTokenInvalid         = DefinedError{Code: 1103, StatusCode: http.StatusUnauthorized, Err: "invalid token", TrErr: "Geçersiz anahtar"}
	ErrSessionReset         = DefinedError{Code: 1104, StatusCode: http.StatusUnauthorized, Err: "user session reset", TrErr: "Oturum sıfırlandı"}

	// 2*** - content errors
	ErrNewsNotFound         = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "news item not found", TrErr: "Haber bulunamadı"}
	ErrAnnouncementNotFound = DefinedError{Code: 2002, StatusCode: http.StatusNotFound, Err: "announcement not found", TrErr: "Duyuru bulunamadı"}
	ErrMemberNotFound       = DefinedError{Code: 2003, StatusCode: http.StatusNotFound, Err: "member not found", TrErr: "Üye bulunamadı"}
	ErrBoardMemberNotFound  = DefinedError{Code: 2004, StatusCode: http.StatusNotFound, Err: "board member not found", TrErr: "Yönetim kurulu üyesi bulunamadı"}
	ErrProjectNotFound      = DefinedError{Code: 2005, StatusCode: http.StatusNotFound, Err: "project not found", TrErr: "Proje bulunamadı"}
	ErrTitleRequired        = DefinedError{Code: 2006, StatusCode: http.StatusBadRequest, Err: "title is required", TrErr: "Başlık boş olamaz"}
	ErrContentRequired      = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "content is required", TrErr: "İçerik boş olamaz"}
	ErrMemberEmailConflict  = DefinedError{Code: 2008, StatusCode: http.StatusConflict, Err: "member with this email already exists", TrErr: "Bu e-posta ile kayıtlı üye zaten var"}
	ErrInvalidCategory      = DefinedError{Code: 2009, StatusCode: http.StatusBadRequest, Err: "invalid project category %s", TrErr: "Geçersiz proje kategorisi %s"}
	ErrInvalidBoardRole     = DefinedError{Code: 2010, StatusCode: http.StatusBadRequest, Err: "invalid board role", TrErr: "Geçersiz kurul görevi"}
	ErrInvalidProjectStatus = DefinedError{Code: 2011, StatusCode: http.StatusBadRequest, Err: "invalid project status", TrErr: "Geçersiz proje durumu"}

	// 3*** - file errors
	ErrFileNotFound      = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "file not found", TrErr: "Dosya bulunamadı"}
	ErrFileTooLarge      = DefinedError{Code: 3002, StatusCode: http.StatusRequestEntityTooLarge, Err: "file is too large", TrErr: "Dosya çok büyük"}
	ErrFileNotImage      = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "file is not an image", TrErr: "Dosya bir görsel değil"}
	ErrFileUploadFailed  = DefinedError{Code: 3004, StatusCode: http.StatusInternalServerError, Err: "file upload failed", TrErr: "Dosya yüklenemedi"}
	ErrFileFieldRequired = DefinedError{Code: 3005, StatusCode: http.StatusBadRequest, Err: "file field is required", TrErr: "Dosya alanı gerekli"}

	// 4*** - editor errors
	ErrEditorCommand  = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "editor command failed: %s", TrErr: "Editör komutu uygulanamadı: %s"}
	ErrEditorExport   = DefinedError{Code: 4002, StatusCode: http.StatusInternalServerError, Err: "editor export failed", TrErr: "İçerik dışa aktarılamadı"}
	ErrEditorSnapshot = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "invalid editor snapshot", TrErr: "Geçersiz editör durumu"}
	ErrEditorClosed   = DefinedError{Code: 4004, StatusCode: http.StatusGone, Err: "editor session closed", TrErr: "Editör oturumu kapandı"}

	// 5*** - validation errors
	ErrInvalidRequest      = DefinedError{Code: 5001, StatusCode: http.StatusBadRequest, Err: "invalid request: %s", TrErr: "Geçersiz istek: %s"}
	ErrInvalidEmail        = DefinedError{Code: 5002, StatusCode: http.StatusBadRequest, Err: "invalid email", TrErr: "Geçersiz e-posta"}
	ErrInvalidUUID         = DefinedError{Code: 5003, StatusCode: http.StatusBadRequest, Err: "invalid identifier", TrErr: "Geçersiz kimlik"}
	ErrPasswordTooWeak     = DefinedError{Code: 5004, StatusCode: http.StatusBadRequest, Err: "password is too weak", TrErr: "Şifre çok zayıf"}
	ErrInvalidPublishState = DefinedError{Code: 5005, StatusCode: http.StatusBadRequest, Err: "invalid publish state: %s", TrErr: "Geçersiz yayın durumu: %s"}
)

func (e DefinedError) WithFormattedMessage(args ...any) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.TrErr = fmt.Sprintf(e.TrErr, args...)
	} else {
		e.Err = strings.ReplaceAll(e.Err, "%s", "")
		e.TrErr = strings.ReplaceAll(e.TrErr, "%s", "")
	}
	return e
}
