// Конфигурация сервиса кооператива из переменных окружения.
//
// Основные возможности:
//   - Загрузка значений по тегам env у полей структуры.
//   - Преобразование типов (string, int, bool, time.Duration).
//   - Маскировка секретов (пароли, ключи, токены) в логах.
//   - Значения по умолчанию для задержек редактора и расписаний фоновых задач.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"strings"
	"time"
)

type Config struct {
	SecretKey string `env:"SECRET_KEY"`

	DatabaseDSN string `env:"DATABASE_URL"`

	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`
	AWSUseSSL     bool   `env:"AWS_S3_USE_SSL"`

	LocalStoragePath string `env:"LOCAL_STORAGE_PATH"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	DefaultAdminEmail    string `env:"DEFAULT_ADMIN_EMAIL"`
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD"`

	CaptchaDisabled bool `env:"CAPTCHA_DISABLED"`

	EditorSettleDelay time.Duration `env:"EDITOR_SETTLE_DELAY"`
	EditorLoadDelay   time.Duration `env:"EDITOR_LOAD_DELAY"`

	HeartbeatCron   string `env:"HEARTBEAT_CRON"`
	AssetsCleanCron string `env:"ASSETS_CLEAN_CRON"`

	Debug bool `env:"DEBUG"`
}

const (
	defaultWebURL          = "http://localhost:8080"
	defaultLocalStorage    = "./uploads"
	defaultHeartbeatCron   = "0 9 */3 * *"
	defaultAssetsCleanCron = "0 3 * * 0"
)

// ReadConfig читает конфигурацию из окружения. Ошибка при некорректном значении переменной или WEB_URL.
func ReadConfig() (*Config, error) {
	config := &Config{}

	if err := envConfig("env", config); err != nil {
		return nil, err
	}

	if config.WebURLRaw == "" {
		config.WebURLRaw = defaultWebURL
	}
	var err error
	config.WebURL, err = url.Parse(config.WebURLRaw)
	if err != nil {
		return nil, err
	}
	if config.WebURL.Host == "" {
		return nil, fmt.Errorf("WEB_URL %q has no host", config.WebURLRaw)
	}

	if config.EditorSettleDelay <= 0 {
		config.EditorSettleDelay = 200 * time.Millisecond
	}
	if config.EditorLoadDelay <= 0 {
		config.EditorLoadDelay = 60 * time.Millisecond
	}
	if config.LocalStoragePath == "" {
		config.LocalStoragePath = defaultLocalStorage
	}
	if config.HeartbeatCron == "" {
		config.HeartbeatCron = defaultHeartbeatCron
	}
	if config.AssetsCleanCron == "" {
		config.AssetsCleanCron = defaultAssetsCleanCron
	}

	return config, nil
}

// MinioEnabled - заданы ли параметры объектного хранилища.
func (c *Config) MinioEnabled() bool {
	return c.AWSEndpoint != "" && c.AWSBucketName != ""
}

// envConfig заполняет поля структуры из переменных окружения по тегу key. Ошибки разбора всех полей возвращаются вместе.
func envConfig(key string, s any) error {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()

	var errs []error
	for i := 0; i < v.NumField(); i++ {
		field := typeParam.Field(i)
		envKey := field.Tag.Get(key)
		if envKey == "" {
			continue
		}
		raw, ok := lookupEnv(envKey)
		if !ok {
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envKey, err))
			continue
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+field.Name),
			slog.String("value", maskValue(field.Name, raw)),
			slog.String("source", "ENVIRONMENT"),
		)
	}
	return errors.Join(errs...)
}

// maskValue скрывает середину секретных значений.
func maskValue(field, value string) string {
	name := strings.ToLower(field)
	if !strings.Contains(name, "pass") && !strings.Contains(name, "secret") && !strings.Contains(name, "token") && !strings.Contains(name, "key") {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
