package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/storage"
)

// EventInput — редактируемые поля события.
type EventInput struct {
	Name      string
	Text      string
	Address   string
	City      string
	State     string
	Zip       string
	Online    bool
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
}

// CreateEvent создаёт событие от имени creatorID. Текст и имя проходят
// антиспам-проверку, если она сконфигурирована.
func (s *Service) CreateEvent(ctx context.Context, creatorID string, in EventInput) (*models.Event, error) {
	const op = "service.events.CreateEvent"

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.checkSpam(ctx, in.Name+"\n"+in.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.storage.CreateEvent(ctx, models.Event{
		CreatorID: creatorID,
		Name:      in.Name,
		Text:      in.Text,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Online:    in.Online,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// EventByID возвращает событие по идентификатору.
func (s *Service) EventByID(ctx context.Context, id string) (*models.Event, error) {
	const op = "service.events.EventByID"

	event, err := s.storage.EventByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// ListEvents возвращает страницу ленты событий (от новых к старым).
func (s *Service) ListEvents(ctx context.Context, p models.ListParams) (*models.EventPage, error) {
	const op = "service.events.ListEvents"

	page, err := s.storage.ListEvents(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// SearchEvents ищет события по имени или городу.
func (s *Service) SearchEvents(ctx context.Context, query string) ([]models.Event, error) {
	const op = "service.events.SearchEvents"

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	events, err := s.storage.SearchEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// UpdateEvent обновляет событие. Разрешено только создателю.
func (s *Service) UpdateEvent(ctx context.Context, actorID, eventID string, in EventInput) (*models.Event, error) {
	const op = "service.events.UpdateEvent"

	current, err := s.storage.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.checkSpam(ctx, in.Name+"\n"+in.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.storage.UpdateEvent(ctx, models.Event{
		ID:        eventID,
		Name:      in.Name,
		Text:      in.Text,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Online:    in.Online,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// DeleteEvent удаляет событие. Разрешено только создателю.
// Картинка события (если была) убирается из файлового хранилища.
func (s *Service) DeleteEvent(ctx context.Context, actorID, eventID string) error {
	const op = "service.events.DeleteEvent"

	current, err := s.storage.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if s.images != nil && current.Img != "" {
		// Объект в бакете — уже мусор; ошибка удаления не должна ломать ответ.
		_ = s.images.RemoveImage(ctx, current.Img)
	}

	return nil
}

// EventImageUploadURL выдаёт presigned PUT для картинки события.
// Разрешено только создателю.
func (s *Service) EventImageUploadURL(ctx context.Context, actorID, eventID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service.events.EventImageUploadURL"

	if s.images == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	info, err := s.images.ImageUploadURL(ctx, eventID, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return info, nil
}

// ConfirmEventImage подтверждает загрузку картинки по ключу и привязывает её
// к событию. Старая картинка (если была) удаляется из бакета.
func (s *Service) ConfirmEventImage(ctx context.Context, actorID, eventID, key string) (string, error) {
	const op = "service.events.ConfirmEventImage"

	if s.images == nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return "", fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	publicURL, err := s.images.CheckImageUpload(ctx, eventID, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFoundImage):
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrInvalidImage):
			return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateEventImage(ctx, eventID, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if current.Img != "" && current.Img != key {
		_ = s.images.RemoveImage(ctx, current.Img)
	}

	return publicURL, nil
}

// RemoveEventImage отвязывает картинку от события и удаляет объект из бакета.
// Разрешено только создателю. Отсутствие картинки — no-op.
func (s *Service) RemoveEventImage(ctx context.Context, actorID, eventID string) error {
	const op = "service.events.RemoveEventImage"

	current, err := s.storage.EventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if current.Img == "" {
		return nil
	}

	if err := s.storage.UpdateEventImage(ctx, eventID, ""); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if s.images != nil {
		_ = s.images.RemoveImage(ctx, current.Img)
	}

	return nil
}

// ToggleEventLike переключает лайк события и возвращает итоговое состояние.
func (s *Service) ToggleEventLike(ctx context.Context, actorID, eventID string) (bool, error) {
	const op = "service.events.ToggleEventLike"

	liked, err := s.storage.ToggleEventLike(ctx, eventID, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) || errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return liked, nil
}

// ToggleEventAttend переключает посещение события.
func (s *Service) ToggleEventAttend(ctx context.Context, actorID, eventID string) (bool, error) {
	const op = "service.events.ToggleEventAttend"

	attending, err := s.storage.ToggleEventAttend(ctx, eventID, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) || errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return attending, nil
}

// checkSpam прогоняет текст через антиспам-проверку, если она настроена.
// Недоступность проверки не блокирует публикацию.
func (s *Service) checkSpam(ctx context.Context, content string) error {
	if s.spam == nil {
		return nil
	}

	isSpam, err := s.spam.IsSpam(ctx, content)
	if err != nil {
		return nil
	}

	if isSpam {
		return ErrSpamRejected
	}

	return nil
}
