package logout

import (
	"log/slog"
	"net/http"

	"eventRegistry/internal/http-server/session"
	"eventRegistry/internal/lib/api/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	response.Response
	Message string `json:"message"`
}

// New clears the session cookie. It succeeds whether or not a session exists.
func New(log *slog.Logger, cookies session.Cookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.logout.New"

		log.Info("user logged out",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		cookies.Clear(w)

		render.JSON(w, r, Response{
			Response: response.OK(),
			Message:  "Logged out successfully",
		})
	}
}
