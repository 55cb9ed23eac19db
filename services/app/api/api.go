package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/growthic-inc/growthic-reddit/common/identity"
	"github.com/growthic-inc/growthic-reddit/services/app"
	v1 "github.com/growthic-inc/growthic-reddit/services/app/api/v1"
)

func NewRouter(app *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CleanPath,
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.RedirectSlashes,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	if app.Verifier() != nil {
		r.Use(bearerAuth(app.Verifier()))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			accountHandler := v1.NewAccountHandler(app.Pool())

			r.Post("/load", accountHandler.LoadAccountsPost())
			r.Get("/", accountHandler.ListAccountsGet())
		})

		r.Route("/posts", func(r chi.Router) {
			postHandler := v1.NewPostHandler(app.PostService(), app.Validator())

			r.Post("/", postHandler.SubmitPost())
			r.Get("/", postHandler.ListSubmissionsGet())

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/comments", postHandler.ListCommentsGet())
				r.Post("/comments", postHandler.CommentPost())
			})
		})

		r.Route("/comments/{id}/replies", func(r chi.Router) {
			postHandler := v1.NewPostHandler(app.PostService(), app.Validator())
			r.Post("/", postHandler.ReplyPost())
		})

		r.Route("/subreddits/{name}", func(r chi.Router) {
			postHandler := v1.NewPostHandler(app.PostService(), app.Validator())

			r.Get("/", postHandler.VerifySubredditGet())
			r.Get("/flairs", postHandler.GetFlairsGet())
		})

		if app.History() != nil {
			r.Route("/history", func(r chi.Router) {
				historyHandler := v1.NewHistoryHandler(app.History())

				r.Get("/", historyHandler.ListHistoryGet())
			})
		}

		r.Route("/schedule", func(r chi.Router) {
			scheduleHandler := v1.NewScheduleHandler(app.JobScheduler(), app.Validator())

			r.Post("/", scheduleHandler.CreateJobPost())
			r.Get("/", scheduleHandler.ListJobsGet())
			r.Delete("/{id}", scheduleHandler.CancelJobDelete())
		})
	})

	return r
}

type principalKey struct{}

// bearerAuth verifies the Authorization bearer token against the configured
// identity provider and stores the principal in the request context.
func bearerAuth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the verified operator identity, if any.
func PrincipalFromContext(ctx context.Context) (*identity.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*identity.Principal)
	return principal, ok
}
