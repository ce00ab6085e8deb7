// Основной пакет сервиса кооператива. Читает конфигурацию, подключает базу данных и файловое хранилище, применяет миграции и запускает HTTP сервер с редактором.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop"
	"github.com/tarimkoop/koop/internal/koop/config"
	"github.com/tarimkoop/koop/internal/koop/dao"
	filestorage "github.com/tarimkoop/koop/internal/koop/file-storage"
	"github.com/tarimkoop/koop/internal/koop/gormlogger"
)

var version string = "DEV"

const sqlitePrefix = "sqlite://"

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// prodLogger - текстовый лог релизной сборки с тем же уровнем, что и у логгера по умолчанию.
func prodLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// main - точка входа.
//
// Пример запуска: go run ./cmd/koop --noMigration --trace
func main() {
	noTranslateFlag := flag.Bool("noTranslate", false, "Turn off BD errors translate")
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	cfg, err := config.ReadConfig()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}

	level := logLevel(*trace || cfg.Debug)
	slog.SetLogLoggerLevel(level)

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(prodLogger(os.Stdout, level))
	}

	slog.Info("Koop start.")

	if cfg.SecretKey == "" {
		slog.Error("Secret key not preset")
		os.Exit(1)
	}

	db, err := gorm.Open(dialector(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: !*noTranslateFlag,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	if strings.HasPrefix(cfg.DatabaseDSN, sqlitePrefix) {
		// sqlite не переносит параллельную запись
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(time.Minute * 15)
	}

	if !*noMigration {
		slog.Info("Migrate DB schema")
		if err := dao.Migrate(db); err != nil {
			slog.Error("Migrate DB schema", "err", err)
			os.Exit(1)
		}
	}

	if err := dao.EnsureDefaultAdmin(db, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
		slog.Error("Create default admin", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Init file storage", "err", err)
		os.Exit(1)
	}

	if err := koop.Server(ctx, db, cfg, storage, version); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("Koop stopped")
}

func dialector(dsn string) gorm.Dialector {
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		return sqlite.Open(path)
	}
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	})
}

func openStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.MinioEnabled() {
		slog.Info("Use minio file storage", "endpoint", cfg.AWSEndpoint, "bucket", cfg.AWSBucketName)
		return filestorage.NewMinioStorage(ctx, cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSUseSSL, cfg.AWSBucketName)
	}
	slog.Info("Use local file storage", "path", cfg.LocalStoragePath)
	return filestorage.NewLocalStorage(cfg.LocalStoragePath)
}

// PrintBanner выводит заголовок с версией и адресом сайта.
func PrintBanner() {
	banner := `
 _  __
| |/ /___   ___  _ __
| ' // _ \ / _ \| '_ \
| . \ (_) | (_) | |_) |
|_|\_\___/ \___/| .__/  %s
                |_|
Tarım kooperatifi: haberler, duyurular, projeler
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
