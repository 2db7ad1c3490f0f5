package api

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/cors"
	"github.com/tranaskommun/tranas-forms/internal/api/handlers"
	"github.com/tranaskommun/tranas-forms/internal/api/middleware"
	"github.com/tranaskommun/tranas-forms/internal/config"
	"github.com/tranaskommun/tranas-forms/internal/web"
)

type Handlers struct {
	Submissions *handlers.SubmissionHandler
	Forms       *handlers.FormHandler
	Admin       *handlers.AdminHandler
	Auth        *handlers.AuthHandler
}

func SetupRouter(cfg config.Config, h Handlers) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("GET /forms/{slug}", h.Forms.RenderPage)
	mainMux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(web.Assets())))

	if cfg.Upload.Backend == "disk" {
		mainMux.Handle("GET /uploads/", http.StripPrefix("/uploads/", uploadsHandler(cfg.Upload.Dir)))
	}

	mainMux.HandleFunc("GET /api/v1/forms/{slug}", h.Forms.GetForm)
	mainMux.HandleFunc("POST /api/v1/submit", h.Submissions.Submit)

	mainMux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mainMux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)

	// ---------- PROTECTED ROUTES ----------
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /forms", h.Admin.ListForms)
	adminMux.HandleFunc("POST /forms", h.Admin.CreateForm)
	adminMux.HandleFunc("PUT /forms/{id}", h.Admin.UpdateForm)
	adminMux.HandleFunc("GET /submissions", h.Admin.ListSubmissions)

	mainMux.Handle("/api/v1/admin/",
		http.StripPrefix(
			"/api/v1/admin",
			middleware.AdminAuth(cfg.JWTSecret)(adminMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}

// uploadsHandler serves stored files but never directory listings: any
// path that resolves to a directory is a 404.
func uploadsHandler(baseDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Rooting the path before cleaning collapses any ".." segments.
		full := filepath.Join(baseDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, full)
	})
}
