package minio

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/explorevent/explorevent/internal/storage"
	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
)

// ImageUploadURL генерирует presigned PUT URL для загрузки картинки события.
// Валидирует contentType и contentLength согласно конфигу, формирует ключ вида
// "events/<eventID>/<uuid>.<ext>", и возвращает также набор заголовков,
// которые клиент должен передать при PUT (будут проверены при подтверждении).
func (s *ImagesStorage) ImageUploadURL(ctx context.Context, eventID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	op := "storage/minio/images/ImageUploadURL"

	if contentLength <= 0 || contentLength > s.cfg.Image.MaxSizeBytes {
		return nil, storage.ErrInvalidImage
	}

	if !isAllowedContentType(s.cfg.Image.AllowedContentTypes, contentType) {
		return nil, storage.ErrInvalidImage
	}

	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	default:
		ext = ""
	}

	// Генерация ключа вида: events/<eventID>/<uuid>.<ext>
	key := path.Join("events", eventID, uuid.NewString()+ext)

	url, err := s.client.PresignedPutObject(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	info := &storage.UploadInfo{
		UploadURL: url.String(),
		ImageKey:  key,
		Expires:   s.cfg.S3.PresignTTL,
		RequiredHeader: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", contentLength),
		},
	}

	return info, nil
}

// CheckImageUpload подтверждает факт загрузки по key:
// проверяет, что объект существует и удовлетворяет ограничениям размера/типа.
// Возвращает публичный URL (если PublicBaseURL задан), иначе — пустую строку.
func (s *ImagesStorage) CheckImageUpload(ctx context.Context, eventID, key string) (publicURL string, err error) {
	op := "storage/minio/images/CheckImageUpload"

	prefix := "events/" + eventID + "/"
	if !strings.HasPrefix(key, prefix) {
		return "", storage.ErrInvalidImage
	}

	objInfo, err := s.client.StatObject(ctx, s.cfg.S3.Bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return "", storage.ErrNotFoundImage
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if objInfo.Size <= 0 || objInfo.Size > s.cfg.Image.MaxSizeBytes {
		return "", storage.ErrInvalidImage
	}

	if ct := objInfo.ContentType; ct != "" && !isAllowedContentType(s.cfg.Image.AllowedContentTypes, ct) {
		return "", storage.ErrInvalidImage
	}

	if s.cfg.S3.PublicBaseURL == "" {
		return "", nil
	}

	base := strings.TrimRight(s.cfg.S3.PublicBaseURL, "/")

	return base + "/" + key, nil
}

// RemoveImage удаляет объект по ключу. Отсутствие объекта не ошибка:
// RemoveObject в MinIO идемпотентен.
func (s *ImagesStorage) RemoveImage(ctx context.Context, key string) error {
	op := "storage/minio/images/RemoveImage"

	if strings.TrimSpace(key) == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.cfg.S3.Bucket, key, mclient.RemoveObjectOptions{}); err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
