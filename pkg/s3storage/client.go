// "Тупой" клиент S3: только выгрузка итогов прогона.

package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/pagination-seeder/pkg/config"
)

// Uploader определяет интерфейс выгрузки объекта.
// Используется для мокания в тестах и внедрения зависимостей.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

type Client struct {
	api    *minio.Client
	bucket string
}

// Проверка что Client реализует Uploader
var _ Uploader = (*Client)(nil)

// New создает клиент, используя наш конфиг
func New(cfg config.S3Config) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// Bucket возвращает имя бакета.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload кладёт data в бакет под ключом key.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// ReportKey строит ключ объекта отчёта: <prefix>/<YYYY-MM-DD>/<runID>.json
func ReportKey(prefix, runID string, at time.Time) string {
	return path.Join(prefix, at.UTC().Format("2006-01-02"), runID+".json")
}
