package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	api "github.com/qurbanovsiyasat/onlinetest-sub001/internal/api/http"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/auth"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/config"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/db"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/eventlog"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/forum"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/grading"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/quiz"
	"github.com/qurbanovsiyasat/onlinetest-sub001/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := seedAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	grader := grading.NewGrader()
	quizStore := quiz.NewSQLStore(dbh, grader)
	forumStore := forum.NewSQLStore(dbh)
	events := eventlog.NewRepo(dbh)
	authSvc := auth.NewService(cfg.AuthSecret)
	checker := rbac.NewChecker(nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> subject/role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizStore, checker))
		pr.With(rbac.RequireAny("quiz:delete-own", "quiz:delete-all")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizStore, checker))

		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(quizStore))

		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/quizzes/{quizID}/results", api.QuizResultsHandler(quizStore, checker))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/results", api.ListResultsHandler(quizStore, checker))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/results/{resultID}", api.GetResultHandler(quizStore, checker))

		pr.Route("/forum", func(fr chi.Router) {
			fr.With(rbac.Require("forum:view")).
				Get("/questions", api.ListForumQuestionsHandler(forumStore))
			fr.With(rbac.Require("forum:view")).
				Get("/questions/{questionID}", api.GetForumQuestionHandler(forumStore))
			fr.With(rbac.Require("forum:post")).
				Post("/questions", api.CreateForumQuestionHandler(forumStore))
			fr.With(rbac.Require("forum:post")).
				Post("/questions/{questionID}/replies", api.AddForumReplyHandler(forumStore))
			fr.With(rbac.Require("forum:moderate")).
				Delete("/questions/{questionID}", api.DeleteForumQuestionHandler(forumStore))
		})

		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		pr.With(rbac.Require("admin:events")).
			Get("/admin/events", api.RecentEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin ensures the bootstrap admin account exists. A missing
// ADMIN_PASS_HASH leaves the account absent rather than guessable.
func seedAdmin(ctx context.Context, dbh *sql.DB, user, passHash string) error {
	if user == "" || passHash == "" {
		return nil
	}
	var exists int
	err := dbh.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, user).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = dbh.ExecContext(ctx,
		`INSERT INTO users (id,username,role,password_hash,created_at) VALUES ($1,$2,'admin',$3,$4)`,
		uuid.NewString(), user, passHash, time.Now().Unix())
	return err
}
