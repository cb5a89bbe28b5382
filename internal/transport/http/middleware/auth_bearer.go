package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/explorevent/explorevent/internal/service"
	"github.com/explorevent/explorevent/internal/transport/http/apierrors"
)

type ctxUserIDKey struct{}

// UserID достаёт id аутентифицированного пользователя из контекста запроса.
// Пустая строка — запрос прошёл мимо AuthBearer (программная ошибка роутинга).
func UserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserIDKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}

	return ""
}

// AuthBearer извлекает Bearer-токен из Authorization, валидирует его через
// validate и кладёт id пользователя в контекст. Отсутствующий или
// невалидный токен — 401, дальше запрос не идёт.
func AuthBearer(validate func(token string) (userID string, err error)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
				apierrors.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				apierrors.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			userID, err := validate(token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
