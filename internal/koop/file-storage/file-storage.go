// Пакет предоставляет интерфейс файлового хранилища и две реализации: локальный каталог и Minio.
// Используется для изображений новостей, проектов и фотографий правления.
package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadTries = 3
	UnknownDir  = "unknown/"
)

var ErrNotFound = errors.New("file not found")

// Metadata - к какой записи относится файл. Сохраняется в тегах объекта.
type Metadata struct {
	Kind     string
	EntityId string
}

func (m Metadata) GetMap() map[string]string {
	meta := make(map[string]string)
	if m.Kind != "" {
		meta["kind"] = m.Kind
	}
	if m.EntityId != "" {
		meta["entityId"] = m.EntityId
	}
	return meta
}

type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

type FileStorage interface {
	Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error
	SaveReader(ctx context.Context, reader io.Reader, fileSize int64, name uuid.UUID, contentType string, metadata *Metadata) error
	Load(ctx context.Context, name uuid.UUID) ([]byte, error)
	LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error)
	Delete(ctx context.Context, name uuid.UUID) error
	Exist(ctx context.Context, name uuid.UUID) (bool, error)
	ListRoot(ctx context.Context, fn func(FileInfo) error) error
	Move(ctx context.Context, old string, new string) error
	GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error)
}

type LocalStorage struct {
	rootDir string
}

func NewLocalStorage(rootPath string) (FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{rootPath}, nil
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(name))
}

func (s *LocalStorage) Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error {
	return os.WriteFile(s.path(name.String()), data, 0o644)
}

func (s *LocalStorage) SaveReader(ctx context.Context, reader io.Reader, fileSize int64, name uuid.UUID, contentType string, metadata *Metadata) error {
	f, err := os.Create(s.path(name.String()))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}

func (s *LocalStorage) Load(ctx context.Context, name uuid.UUID) ([]byte, error) {
	data, err := os.ReadFile(s.path(name.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *LocalStorage) LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalStorage) Delete(ctx context.Context, name uuid.UUID) error {
	err := os.Remove(s.path(name.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStorage) Exist(ctx context.Context, name uuid.UUID) (bool, error) {
	_, err := os.Stat(s.path(name.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *LocalStorage) ListRoot(ctx context.Context, fn func(FileInfo) error) error {
	return filepath.WalkDir(s.rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.rootDir, p)
		if err != nil {
			return err
		}
		return fn(FileInfo{
			Name:        filepath.ToSlash(rel),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			CreatedAt:   info.ModTime(),
		})
	})
}

func (s *LocalStorage) Move(ctx context.Context, old string, new string) error {
	if err := os.MkdirAll(filepath.Dir(s.path(new)), 0o755); err != nil {
		return err
	}
	return os.Rename(s.path(old), s.path(new))
}

func (s *LocalStorage) GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error) {
	st, err := os.Stat(s.path(name.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &FileInfo{Name: name.String(), Size: st.Size(), CreatedAt: st.ModTime()}, nil
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinioStorage(ctx context.Context, endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string) (FileStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client, bucketName}, nil
}

func (s *MinioStorage) Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error {
	return s.put(ctx, func() io.Reader { return bytes.NewReader(data) }, int64(len(data)), name, contentType, metadata)
}

func (s *MinioStorage) SaveReader(ctx context.Context, reader io.Reader, fileSize int64, name uuid.UUID, contentType string, metadata *Metadata) error {
	// поток нельзя перечитать, поэтому без повторов
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}
	_, err := s.client.PutObject(ctx, s.bucketName, name.String(), reader, fileSize, putOptions)
	return err
}

func (s *MinioStorage) put(ctx context.Context, body func() io.Reader, size int64, name uuid.UUID, contentType string, metadata *Metadata) error {
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}

	var err error
	for i := range UploadTries {
		_, err = s.client.PutObject(ctx, s.bucketName, name.String(), body(), size, putOptions)
		if err == nil {
			return nil
		}
		resp := minio.ToErrorResponse(err)
		slog.Error("Upload file to minio", "name", name, "try", i+1, "code", resp.StatusCode, "msg", resp.Message)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second * time.Duration(i+1)):
		}
	}
	return err
}

func (s *MinioStorage) Load(ctx context.Context, name uuid.UUID) ([]byte, error) {
	obj, err := s.LoadReader(ctx, name)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

func (s *MinioStorage) LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error) {
	ok, err := s.Exist(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.client.GetObject(ctx, s.bucketName, name.String(), minio.GetObjectOptions{})
}

func (s *MinioStorage) Delete(ctx context.Context, name uuid.UUID) error {
	return s.client.RemoveObject(ctx, s.bucketName, name.String(), minio.RemoveObjectOptions{})
}

func (s *MinioStorage) Exist(ctx context.Context, name uuid.UUID) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, name.String(), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) ListRoot(ctx context.Context, fn func(info FileInfo) error) error {
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := fn(FileInfo{
			Name:        obj.Key,
			Size:        obj.Size,
			ContentType: obj.ContentType,
			CreatedAt:   obj.LastModified,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStorage) Move(ctx context.Context, old string, new string) error {
	if _, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucketName, Object: new},
		minio.CopySrcOptions{Bucket: s.bucketName, Object: old},
	); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucketName, old, minio.RemoveObjectOptions{})
}

func (s *MinioStorage) GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucketName, name.String(), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &FileInfo{
		Name:        name.String(),
		Size:        stat.Size,
		ContentType: stat.ContentType,
		CreatedAt:   stat.LastModified,
	}, nil
}

// IsUnknown - файл уже перенесен в каталог неопознанных.
func IsUnknown(name string) bool {
	return strings.HasPrefix(name, UnknownDir)
}
