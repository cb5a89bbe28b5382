// service содержит бизнес-логику explorevent-бэкенда:
// регистрацию/аутентификацию пользователей, жизненный цикл событий и
// комментариев, тогглы вовлечённости и каскад удаления аккаунта.
// Работа с хранилищами идёт через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные хранилища потокобезопасны.
//   - Ошибки возвращаются и далее маппятся
//     транспортом на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/explorevent/explorevent/internal/config"
	"github.com/explorevent/explorevent/internal/moderation"
	"github.com/explorevent/explorevent/internal/storage"
)

var (
	// ErrInvalidCredentials — пара email/пароль неверна или пользователь не найден.
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — access-токен некорректен по формату/подписи или истёк.
	// Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUsernameTaken — username уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой.
	// Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidArgument — входные данные операции не проходят валидацию
	// (пустой текст, кривой cursor, неподдерживаемый тип картинки и т.п.).
	// Транспорт: HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — запрошенная сущность отсутствует. Транспорт: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied — операция над чужой сущностью. Транспорт: HTTP 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSpamRejected — текст отклонён антиспам-проверкой. Транспорт: HTTP 422.
	ErrSpamRejected = errors.New("content rejected as spam")
)

// Service описывает бизнес-логику explorevent-бэкенда.
type Service struct {
	storage storage.Storage
	images  storage.Images // может быть nil, если файловое хранилище не сконфигурировано
	spam    moderation.Checker
	cfg     *config.Config
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, cfg *config.Config) *Service {
	return &Service{
		storage: st,
		cfg:     cfg,
	}
}

// SetImages устанавливает файловое хранилище картинок (опционально).
func (s *Service) SetImages(img storage.Images) {
	s.images = img
}

// SetSpamChecker устанавливает антиспам-проверку текста (опционально).
func (s *Service) SetSpamChecker(c moderation.Checker) {
	s.spam = c
}
