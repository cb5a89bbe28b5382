package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/pkg/log"
	"github.com/explorevent/explorevent/internal/storage"
	"log/slog"
)

// UserByID возвращает профиль пользователя.
func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByUsername возвращает профиль по username.
func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "service.users.UserByUsername"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service.users.ListUsers"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UpdateProfile обновляет редактируемые поля профиля (about, full_name,
// username). Менять можно только свой профиль.
func (s *Service) UpdateProfile(ctx context.Context, actorID, targetID, about, fullName, username string) (*models.User, error) {
	const op = "service.users.UpdateProfile"

	if actorID != targetID {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UpdateUserDetails(ctx, targetID, about, fullName, username)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateEmail меняет e-mail своего профиля.
func (s *Service) UpdateEmail(ctx context.Context, actorID, targetID, email string) error {
	const op = "service.users.UpdateEmail"

	if actorID != targetID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := s.storage.UpdateUserEmail(ctx, targetID, normEmail); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteAccount удаляет аккаунт и тумбстоунит зависимый контент.
//
// Последовательность из трёх шагов, без отката:
//  1. удалить запись пользователя;
//  2. затереть все его события тумбстоун-маркерами;
//  3. затереть все его комментарии.
//
// Каждый шаг идемпотентен, поэтому повтор вызова после частичного сбоя
// безопасно доводит каскад до конца. Отсутствие пользователя на шаге 1
// не прерывает шаги 2-3: тумбстоун мог не доехать в прошлый раз.
func (s *Service) DeleteAccount(ctx context.Context, actorID, targetID string) error {
	const op = "service.users.DeleteAccount"

	lg := log.From(ctx)

	if actorID != targetID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteUser(ctx, targetID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: delete user: %w", op, err)
		}

		lg.Warn("user_already_deleted",
			slog.String("op", op),
			slog.String("user_id", targetID),
		)
	}

	if err := s.storage.TombstoneUserEvents(ctx, targetID); err != nil {
		return fmt.Errorf("%s: tombstone events: %w", op, err)
	}

	if err := s.storage.TombstoneUserComments(ctx, targetID); err != nil {
		return fmt.Errorf("%s: tombstone comments: %w", op, err)
	}

	return nil
}
