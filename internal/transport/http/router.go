package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/explorevent/explorevent/internal/service"
	"github.com/explorevent/explorevent/internal/transport/http/handlers"
	"github.com/explorevent/explorevent/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // счётчики и гистограммы по каждому запросу
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)
	auth := middleware.AuthBearer(svc.ValidateAccessToken)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, auth)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, auth)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Чтение открыто без токена; любая мутация и /auth/me — только с Bearer.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Middleware) {
	// auth
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)

	// events (чтение)
	r.Get("/events", h.ListEvents)
	r.Get("/events/search", h.SearchEvents)
	r.Get("/events/{id}", h.EventByID)
	r.Get("/events/{id}/comments", h.EventComments)

	// comments (чтение)
	r.Get("/comments/{id}", h.CommentByID)

	// users (чтение)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.UserByID)
	r.Get("/users/{id}/profile", h.UserProfile)

	// всё, что меняет состояние — под Bearer-токеном.
	r.Group(func(pr chi.Router) {
		pr.Use(auth)

		pr.Get("/auth/me", h.Me)

		pr.Post("/events", h.CreateEvent)
		pr.Patch("/events/{id}", h.UpdateEvent)
		pr.Delete("/events/{id}", h.DeleteEvent)
		pr.Post("/events/{id}/image/presign", h.EventImagePresign)
		pr.Post("/events/{id}/image/confirm", h.EventImageConfirm)
		pr.Delete("/events/{id}/image", h.EventImageRemove)
		pr.Post("/events/{id}/like", h.ToggleEventLike)
		pr.Post("/events/{id}/attend", h.ToggleEventAttend)

		pr.Post("/comments", h.CreateComment)
		pr.Patch("/comments/{id}", h.EditComment)
		pr.Delete("/comments/{id}", h.DeleteComment)
		pr.Post("/comments/{id}/like", h.ToggleCommentLike)

		pr.Patch("/users/{id}", h.UpdateProfile)
		pr.Patch("/users/{id}/email", h.UpdateEmail)
		pr.Patch("/users/{id}/password", h.ChangePassword)
		pr.Delete("/users/{id}", h.DeleteAccount)
	})
}
