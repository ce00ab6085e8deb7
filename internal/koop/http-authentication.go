// Аутентификация администраторов сайта кооператива.
//
// Основные возможности:
//   - Вход по email и паролю с проверкой капчи.
//   - Выдача и проверка JWT (access и refresh) в куках или заголовке Authorization.
//   - Обновление пары токенов с занесением старого refresh токена в черный список.
//   - Блокировка аккаунта на 20 минут после 5 неудачных попыток входа.
package koop

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	tokenscache "github.com/tarimkoop/koop/internal/koop/tokens-cache"
)

const (
	TokenExpiresPeriod        = 30 * time.Minute
	RefreshTokenExpiresPeriod = 7 * 24 * time.Hour

	maxLoginAttempts = 5
	blockPeriod      = 20 * time.Minute
)

type Authentication struct {
	db          *gorm.DB
	secret      []byte
	captcha     *CaptchaSignatures
	tokensCache *tokenscache.TokensCache

	// пауза после неудачного входа умножается на число попыток
	failDelay time.Duration
}

type AuthContext struct {
	echo.Context
	User         *dao.User
	AccessToken  *Token
	RefreshToken *Token
}

type AuthConfig struct {
	Secret      []byte
	DB          *gorm.DB
	TokensCache *tokenscache.TokensCache
	Skipper     middleware.Skipper
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			var refreshToken *Token
			var accessToken *Token

			if schema, tokenString, ok := strings.Cut(c.Request().Header.Get("Authorization"), " "); ok {
				if strings.TrimSpace(schema) != "Bearer" {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
				accessToken = &Token{SignedString: strings.TrimSpace(tokenString), Type: "access"}
			} else {
				if accessCookie, err := c.Cookie("access_token"); err == nil && accessCookie.Value != "" {
					accessToken = &Token{SignedString: accessCookie.Value, Type: "access"}
				}
				if refreshCookie, err := c.Cookie("refresh_token"); err == nil && refreshCookie.Value != "" {
					refreshToken = &Token{SignedString: refreshCookie.Value, Type: "refresh"}
				}
				if refreshToken == nil && accessToken == nil {
					return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
				}
			}

			var accessError error
			if accessToken != nil {
				accessToken.JWT, accessError = jwt.Parse(accessToken.SignedString, config.keyFunc)
			}

			if refreshToken != nil {
				var err error
				refreshToken.JWT, err = jwt.Parse(refreshToken.SignedString, config.keyFunc)
				if err != nil {
					if errors.Is(err, jwt.ErrTokenExpired) {
						return EErrorDefined(c, apierrors.ErrTokenExpired)
					}
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			var user *dao.User

			// Prolong if expired
			if accessToken == nil || errors.Is(accessError, jwt.ErrTokenExpired) {
				var newRefresh *Token
				var err error
				accessToken, newRefresh, user, err = config.tokenProlong(c, refreshToken)
				if err != nil {
					return EError(c, err)
				}
				refreshToken = newRefresh
			} else if accessError != nil {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			} else {
				var err error
				user, err = config.userFromToken(accessToken, "access")
				if err != nil {
					return EError(c, err)
				}
			}

			if !user.IsActive {
				return EErrorDefined(c, apierrors.ErrSessionReset)
			}

			return next(AuthContext{c, user, accessToken, refreshToken})
		}
	}
}

func (a *AuthConfig) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return a.Secret, nil
}

// userFromToken проверяет тип токена, черный список и возвращает пользователя.
func (a *AuthConfig) userFromToken(token *Token, tokenType string) (*dao.User, error) {
	claims, ok := token.JWT.Claims.(jwt.MapClaims)
	if !ok || !token.JWT.Valid {
		return nil, apierrors.ErrTokenInvalid
	}
	if t, _ := claims["token_type"].(string); t != tokenType {
		return nil, apierrors.ErrTokenInvalid
	}

	blacklisted, err := dao.IsTokenBlacklisted(a.DB, token.Signature())
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, apierrors.ErrTokenExpired
	}

	userId, _ := claims["user_id"].(string)
	var user dao.User
	if err := a.DB.Where("id = ?", userId).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrTokenInvalid
		}
		return nil, err
	}

	// токены, выданные до сброса сессий, недействительны
	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil && user.TokenUpdatedAt != nil &&
		issued.Time.Before(user.TokenUpdatedAt.Truncate(time.Second)) {
		return nil, apierrors.ErrSessionReset
	}
	return &user, nil
}

// tokenProlong выдает новую пару по refresh токену. Параллельные запросы с тем же
// refresh токеном в течение tokenscache.TTL получают ту же пару.
func (a *AuthConfig) tokenProlong(c echo.Context, token *Token) (*Token, *Token, *dao.User, error) {
	if token == nil {
		return nil, nil, nil, apierrors.ErrRefreshTokenRequired
	}

	if a.TokensCache != nil {
		if cached := a.TokensCache.GetTokens(token.SignedString); cached != nil {
			access := &Token{SignedString: cached.AccessToken, Type: "access"}
			refresh := &Token{SignedString: cached.RefreshToken, Type: "refresh"}
			setAuthCookies(c, access, refresh)
			return access, refresh, cached.User, nil
		}
	}

	user, err := a.userFromToken(token, "refresh")
	if err != nil {
		return nil, nil, nil, err
	}

	exp, err := token.JWT.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, nil, nil, apierrors.ErrTokenInvalid
	}
	if err := dao.BlacklistToken(a.DB, token.Signature(), exp.Time); err != nil {
		return nil, nil, nil, err
	}

	accessToken, refreshToken, err := createAccessToken(a.Secret, user.ID.String())
	if err != nil {
		return nil, nil, nil, err
	}
	if a.TokensCache != nil {
		a.TokensCache.StoreTokens(token.SignedString, accessToken.SignedString, refreshToken.SignedString, user)
	}

	setAuthCookies(c, accessToken, refreshToken)
	return accessToken, refreshToken, user, nil
}

func AddAuthenticationServices(db *gorm.DB, g *echo.Group, secret []byte, captcha *CaptchaSignatures, tc *tokenscache.TokensCache) *Authentication {
	ret := &Authentication{db: db, secret: secret, captcha: captcha, tokensCache: tc, failDelay: time.Second}

	g.POST("sign-in/", ret.emailLogin)
	g.POST("token-refresh/", ret.refreshTokens)
	g.GET("captcha/", ret.requestCaptcha)
	return ret
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	CaptchaPayload string `json:"captcha_payload"`
}

// emailLogin godoc
// @id emailLogin
// @Summary Администраторы: вход
// @Description Аутентифицирует администратора по email и паролю с проверкой капчи
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginRequest true "Данные для входа"
// @Success 200 {object} map[string]interface{} "Токены доступа и информация о пользователе"
// @Failure 401 {object} apierrors.DefinedError "Неудачный вход в систему"
// @Router /api/sign-in/ [post]
func (a *Authentication) emailLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if !a.captcha.Validate(req.CaptchaPayload) {
		return EErrorDefined(c, apierrors.ErrCaptchaFail)
	}

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrInvalidEmail)
	}

	var user dao.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrFailedLogin)
		}
		return EError(c, err)
	}

	if user.BlockedUntil.Valid && user.BlockedUntil.Time.After(time.Now()) {
		return EErrorDefined(c, apierrors.ErrBlockedUntil.WithFormattedMessage(user.BlockedUntil.Time.Format("02.01.2006 15:04")))
	}

	if !user.IsActive {
		return EErrorDefined(c, apierrors.ErrLoginTriesExceed)
	}

	if !user.CheckPassword(req.Password) {
		user.LoginAttempts++
		time.Sleep(a.failDelay * time.Duration(user.LoginAttempts))

		if user.LoginAttempts >= maxLoginAttempts {
			slog.Info("Block user for more than 5 failed attempts", "user", user.Email)
			user.BlockedUntil = sql.NullTime{Valid: true, Time: time.Now().Add(blockPeriod)}
			user.LoginAttempts = 0
		}

		if err := a.db.Model(&user).Select("LoginAttempts", "BlockedUntil").Updates(&user).Error; err != nil {
			return EError(c, err)
		}

		if user.BlockedUntil.Valid && user.BlockedUntil.Time.After(time.Now()) {
			return EErrorDefined(c, apierrors.ErrBlockedUntil.WithFormattedMessage(user.BlockedUntil.Time.Format("02.01.2006 15:04")))
		}

		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	tm := time.Now()
	user.LastActive = &tm
	user.LastLoginTime = &tm
	user.LastLoginIp = c.RealIP()
	user.LastLoginUagent = c.Request().UserAgent()
	user.LoginAttempts = 0
	user.BlockedUntil = sql.NullTime{Valid: false}
	if err := a.db.Model(&user).Select("LastActive", "LastLoginTime", "LastLoginIp", "LastLoginUagent", "LoginAttempts", "BlockedUntil").Updates(&user).Error; err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(a.secret, user.ID.String())
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshTokens godoc
// @id refreshTokens
// @Summary Администраторы: обновление токенов
// @Description Выдает новую пару токенов по refresh токену из тела запроса или куки
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body RefreshRequest false "Refresh токен"
// @Success 200 {object} map[string]interface{} "Новые токены"
// @Failure 401 {object} apierrors.DefinedError "Токен недействителен"
// @Router /api/token-refresh/ [post]
func (a *Authentication) refreshTokens(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		return EErrorDefined(c, apierrors.ErrRefreshTokenRequired)
	}

	conf := AuthConfig{Secret: a.secret, DB: a.db, TokensCache: a.tokensCache}
	token := &Token{SignedString: req.RefreshToken, Type: "refresh"}
	var err error
	token.JWT, err = jwt.Parse(token.SignedString, conf.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return EErrorDefined(c, apierrors.ErrTokenExpired)
		}
		return EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	access, refresh, _, err := conf.tokenProlong(c, token)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  access.SignedString,
		"refresh_token": refresh.SignedString,
	})
}

// requestCaptcha godoc
// @id requestCaptcha
// @Summary Администраторы: запрос капчи
// @Tags Auth
// @Produce json
// @Success 200 {object} altcha.Challenge "Капча успешно создана"
// @Router /api/captcha/ [get]
func (a *Authentication) requestCaptcha(c echo.Context) error {
	challenge, err := a.captcha.Challenge()
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, challenge)
}

// signOut godoc
// @id signOut
// @Summary Администраторы: выход
// @Description Заносит текущие токены в черный список и очищает куки
// @Tags Auth
// @Security ApiKeyAuth
// @Success 200 "Успешный выход"
// @Router /api/auth/sign-out/ [post]
func (s *Services) signOut(c echo.Context) error {
	ctx := c.(AuthContext)
	for _, t := range []*Token{ctx.AccessToken, ctx.RefreshToken} {
		if t == nil || t.JWT == nil {
			continue
		}
		exp, err := t.JWT.Claims.GetExpirationTime()
		if err != nil || exp == nil {
			continue
		}
		if err := dao.BlacklistToken(s.db, t.Signature(), exp.Time); err != nil {
			return EError(c, err)
		}
	}
	s.tokensCache.ForgetUser(ctx.User.ID)

	clearAuthCookies(c)
	return c.NoContent(http.StatusOK)
}

// getMe godoc
// @id getMe
// @Summary Администраторы: текущий пользователь
// @Tags Auth
// @Security ApiKeyAuth
// @Success 200 {object} dao.User
// @Router /api/auth/me/ [get]
func (s *Services) getMe(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(AuthContext).User)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// changePassword godoc
// @id changePassword
// @Summary Администраторы: смена пароля
// @Description Меняет пароль и сбрасывает все ранее выданные токены
// @Tags Auth
// @Accept json
// @Security ApiKeyAuth
// @Param data body ChangePasswordRequest true "Старый и новый пароль"
// @Success 200 "Пароль изменен"
// @Failure 400 {object} apierrors.DefinedError "Слабый пароль"
// @Failure 401 {object} apierrors.DefinedError "Неверный старый пароль"
// @Router /api/auth/me/password/ [post]
func (s *Services) changePassword(c echo.Context) error {
	user := c.(AuthContext).User
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if !user.CheckPassword(req.OldPassword) {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}
	if !strongPassword(req.NewPassword) {
		return EErrorDefined(c, apierrors.ErrPasswordTooWeak)
	}

	now := time.Now()
	user.Password = dao.GenPasswordHash(req.NewPassword)
	user.TokenUpdatedAt = &now
	if err := s.db.Model(user).Select("Password", "TokenUpdatedAt").Updates(user).Error; err != nil {
		return EError(c, err)
	}
	s.tokensCache.ForgetUser(user.ID)
	clearAuthCookies(c)
	return c.NoContent(http.StatusOK)
}

// strongPassword - не короче 8 символов, есть буква и цифра.
func strongPassword(pass string) bool {
	if utf8.RuneCountInString(pass) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range pass {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Проверка email на корректность
func ValidateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

type Token struct {
	JWT          *jwt.Token
	SignedString string
	Type         string
}

// Signature - последняя часть подписанной строки, ключ черного списка.
func (t *Token) Signature() string {
	return t.SignedString[strings.LastIndex(t.SignedString, ".")+1:]
}

// Генерация ключа доступа
func createAccessToken(secret []byte, userId string) (*Token, *Token, error) {
	ta, err := GenJwtToken(secret, "access", userId)
	if err != nil {
		return nil, nil, err
	}

	tr, err := GenJwtToken(secret, "refresh", userId)
	if err != nil {
		return nil, nil, err
	}
	return ta, tr, nil
}

// Генерация JWT ключа
func GenJwtToken(secret []byte, tokenType string, userid string) (*Token, error) {
	u, _ := uuid.NewV4()
	expires := TokenExpiresPeriod
	if tokenType == "refresh" {
		expires = RefreshTokenExpiresPeriod
	}
	claims := jwt.MapClaims{
		"exp":        jwt.NewNumericDate(time.Now().Add(expires)),
		"iat":        jwt.NewNumericDate(time.Now()),
		"jti":        fmt.Sprintf("%x", u),
		"token_type": tokenType,
		"user_id":    userid,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString(secret)
	if err != nil {
		return nil, err
	}

	return &Token{
		JWT:          token,
		SignedString: signedString,
		Type:         tokenType,
	}, nil
}

func setAuthCookies(c echo.Context, accessToken *Token, refreshToken *Token) {
	c.SetCookie(authCookie("access_token", accessToken.SignedString, time.Now().Add(TokenExpiresPeriod)))
	c.SetCookie(authCookie("refresh_token", refreshToken.SignedString, time.Now().Add(RefreshTokenExpiresPeriod)))
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{"access_token", "refresh_token"} {
		cookie := authCookie(name, "", time.Time{})
		cookie.MaxAge = -1
		c.SetCookie(cookie)
	}
}

func authCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
}
