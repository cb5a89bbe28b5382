package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFoundImage — объект (ключ) отсутствует в бакете.
	ErrNotFoundImage = errors.New("image not found")
	// ErrInvalidImage — нарушены ограничения загрузки (тип/размер/ключ).
	ErrInvalidImage = errors.New("invalid image")
)

// UploadInfo — информация для клиента о presigned PUT загрузке.
//   - UploadURL: конечная URL для PUT-запроса.
//   - ImageKey: ключ (путь) будущего объекта в бакете.
//   - Expires: время жизни подписи.
//   - RequiredHeader: заголовки, которые клиент ОБЯЗАН передать при PUT.
type UploadInfo struct {
	UploadURL      string
	ImageKey       string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// Images — контракт файлового хранилища картинок событий.
// Ядро хранит только возвращаемый ключ-строку на Event, никогда не байты.
type Images interface {
	// ImageUploadURL генерирует presigned PUT для картинки события.
	// Внутри — валидация contentType и contentLength.
	ImageUploadURL(ctx context.Context, eventID, contentType string, contentLength int64) (*UploadInfo, error)

	// CheckImageUpload проверяет факт загрузки по key (наличие, тип, размер).
	// Возвращает публичный URL (если сконфигурирован PublicBaseURL), иначе "".
	CheckImageUpload(ctx context.Context, eventID, key string) (publicURL string, err error)

	// RemoveImage удаляет объект по ключу. Отсутствие объекта — не ошибка.
	RemoveImage(ctx context.Context, key string) error
}
