package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/explorevent/explorevent/internal/models"
	"github.com/explorevent/explorevent/internal/storage"
)

// PostComment публикует комментарий к событию eventID от имени creatorID.
// replyToID == "" — корневой комментарий; иначе ответ на комментарий того же
// события.
func (s *Service) PostComment(ctx context.Context, creatorID, eventID, replyToID, text string) (*models.Comment, error) {
	const op = "service.comments.PostComment"

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.checkSpam(ctx, text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.storage.CreateComment(ctx, models.Comment{
		CreatorID: creatorID,
		EventID:   eventID,
		ReplyToID: replyToID,
		Text:      text,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEventNotFound),
			errors.Is(err, storage.ErrParentNotFound),
			errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrParentMismatch):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (s *Service) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "service.comments.CommentByID"

	comment, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// EventComments возвращает комментарии события плоским списком в порядке
// создания.
func (s *Service) EventComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	const op = "service.comments.EventComments"

	flat, err := s.storage.CommentsByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return flat, nil
}

// EventCommentTree возвращает дерево комментариев события: корневые узлы в
// порядке создания, у каждого — его прямые ответы, и так далее вглубь.
func (s *Service) EventCommentTree(ctx context.Context, eventID string) ([]*models.CommentNode, error) {
	const op = "service.comments.EventCommentTree"

	flat, err := s.EventComments(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buildCommentTree(flat), nil
}

// EditComment меняет текст своего комментария.
func (s *Service) EditComment(ctx context.Context, actorID, commentID, text string) (*models.Comment, error) {
	const op = "service.comments.EditComment"

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.CommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.checkSpam(ctx, text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.storage.UpdateCommentText(ctx, commentID, text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// DeleteComment удаляет свой комментарий вместе с его прямыми ответами.
// Ответы глубже одного уровня остаются и становятся сиротами — дерево для них
// больше не строится.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) error {
	const op = "service.comments.DeleteComment"

	current, err := s.storage.CommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if current.CreatorID != actorID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ToggleCommentLike переключает лайк комментария.
func (s *Service) ToggleCommentLike(ctx context.Context, actorID, commentID string) (bool, error) {
	const op = "service.comments.ToggleCommentLike"

	liked, err := s.storage.ToggleCommentLike(ctx, commentID, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return liked, nil
}
