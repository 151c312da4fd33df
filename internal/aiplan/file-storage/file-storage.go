// Пакет предоставляет архив экспортированных документов в объектном хранилище Minio (S3).
// Архив хранит PDF-файлы под ключами exports/<docId>/<unix-nanos>.pdf, выдает временные ссылки на скачивание
// и удаляет устаревшие экспорты.
package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadTries      = 3
	uploadRetryDelay = 2 * time.Second

	ArchivePrefix = "exports/"
)

type Metadata struct {
	DocId string
}

func (m Metadata) GetMap() map[string]string {
	meta := make(map[string]string)
	if m.DocId != "" {
		meta["docId"] = m.DocId
	}
	return meta
}

type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

type ArchiveStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string, metadata *Metadata) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
	// DeleteOlderThan удаляет объекты с префиксом prefix старше age и возвращает число удаленных.
	DeleteOlderThan(ctx context.Context, prefix string, age time.Duration) (int, error)
}

// ArchiveKey - ключ объекта для экспорта документа docId, созданного в момент t.
func ArchiveKey(docId uuid.UUID, t time.Time) string {
	return ArchivePrefix + docId.String() + "/" + strconv.FormatInt(t.UnixNano(), 10) + ".pdf"
}

// ParseArchiveKey - обратное преобразование ArchiveKey.
func ParseArchiveKey(key string) (uuid.UUID, time.Time, error) {
	rest, ok := strings.CutPrefix(key, ArchivePrefix)
	if !ok {
		return uuid.Nil, time.Time{}, fmt.Errorf("key %q outside archive", key)
	}
	id, name, ok := strings.Cut(rest, "/")
	if !ok {
		return uuid.Nil, time.Time{}, fmt.Errorf("key %q has no object name", key)
	}
	docId, err := uuid.FromString(id)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("key %q: %w", key, err)
	}
	nanos, err := strconv.ParseInt(strings.TrimSuffix(name, ".pdf"), 10, 64)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("key %q: %w", key, err)
	}
	return docId, time.Unix(0, nanos), nil
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
}

func (s *MinioStorage) Save(ctx context.Context, key string, data []byte, contentType string, metadata *Metadata) error {
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}

	var err error
	for i := range UploadTries {
		_, err = s.client.PutObject(ctx,
			s.bucketName,
			key,
			bytes.NewReader(data),
			int64(len(data)),
			putOptions,
		)
		if err == nil {
			return nil
		}

		resp := minio.ToErrorResponse(err)
		slog.Error("Upload export to minio", "key", key, "try", i+1, "code", resp.StatusCode, "msg", resp.Message)
		if i+1 == UploadTries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uploadRetryDelay):
		}
	}
	return err
}

func (s *MinioStorage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	return s.client.PresignedGetObject(ctx, s.bucketName, key, ttl, url.Values{})
}

func (s *MinioStorage) DeleteOlderThan(ctx context.Context, prefix string, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)

	var expired []FileInfo
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		info := FileInfo{Name: obj.Key, Size: obj.Size, ContentType: obj.ContentType, CreatedAt: obj.LastModified}
		if isExpired(info, cutoff) {
			expired = append(expired, info)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, info := range expired {
			select {
			case objectsCh <- minio.ObjectInfo{Key: info.Name}:
			case <-ctx.Done():
				return
			}
		}
	}()

	failed := 0
	var lastErr error
	for rErr := range s.client.RemoveObjects(ctx, s.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		slog.Error("Remove archived export", "key", rErr.ObjectName, "err", rErr.Err)
		failed++
		lastErr = rErr.Err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(expired) - failed, lastErr
}

func isExpired(info FileInfo, cutoff time.Time) bool {
	return !info.CreatedAt.IsZero() && info.CreatedAt.Before(cutoff)
}

func NewMinioStorage(ctx context.Context, endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string) (*MinioStorage, error) {
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
		// Create bucket if not exist
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client, bucketName}, nil
}
