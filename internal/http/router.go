package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intake-backend/internal/handlers"
	"intake-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	intakeHandler *handlers.IntakeHandler,
	recordHandler *handlers.RecordHandler,
	printHandler *handlers.PrintHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(authHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Protected API routes - Intake
	intakeAPI := r.PathPrefix("/api/intake").Subrouter()
	intakeAPI.Use(authMiddleware.Authenticate)
	intakeAPI.HandleFunc("/whole", intakeHandler.WholeBoxIntake).Methods("POST")
	intakeAPI.HandleFunc("/mixed", intakeHandler.StartMixedSession).Methods("POST")
	intakeAPI.HandleFunc("/mixed/{id}", intakeHandler.GetSession).Methods("GET")
	intakeAPI.HandleFunc("/mixed/{id}", intakeHandler.CancelSession).Methods("DELETE")
	intakeAPI.HandleFunc("/mixed/{id}/boxes", intakeHandler.CommitBox).Methods("POST")

	// Protected API routes - Records
	recordsAPI := r.PathPrefix("/api/records").Subrouter()
	recordsAPI.Use(authMiddleware.Authenticate)
	recordsAPI.HandleFunc("", recordHandler.ListRecords).Methods("GET")
	recordsAPI.HandleFunc("/pending", recordHandler.ListPendingRecords).Methods("GET")
	recordsAPI.HandleFunc("/stats", recordHandler.GetStats).Methods("GET")
	recordsAPI.HandleFunc("/display", recordHandler.ListDisplayRows).Methods("GET")

	// Mixed-box groups (cascading edit/delete); registered before /{id}
	recordsAPI.HandleFunc("/groups", recordHandler.ListGroups).Methods("GET")
	recordsAPI.HandleFunc("/groups/{key}", recordHandler.EditGroup).Methods("PUT")
	recordsAPI.HandleFunc("/groups/{key}", authMiddleware.RequireRole("operator", "admin")(http.HandlerFunc(recordHandler.DeleteGroup)).ServeHTTP).Methods("DELETE")

	recordsAPI.HandleFunc("/{id}", recordHandler.GetRecord).Methods("GET")
	recordsAPI.HandleFunc("/{id}", recordHandler.UpdateRecord).Methods("PUT")
	recordsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("operator", "admin")(http.HandlerFunc(recordHandler.DeleteRecord)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Printing and labels
	printAPI := r.PathPrefix("/api/print").Subrouter()
	printAPI.Use(authMiddleware.Authenticate)
	printAPI.HandleFunc("/records/{id}", printHandler.PrintRecordLabel).Methods("POST")
	printAPI.HandleFunc("/groups/{key}", printHandler.PrintGroupLabel).Methods("POST")
	printAPI.HandleFunc("/records/{id}/label.pdf", printHandler.DownloadRecordLabel).Methods("GET")
	printAPI.HandleFunc("/groups/{key}/label.pdf", printHandler.DownloadGroupLabel).Methods("GET")
	printAPI.HandleFunc("/summary", printHandler.IntakeSummary).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
