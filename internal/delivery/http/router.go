package http

import (
	"net/http"

	"telehealth-consult/internal/delivery/http/handler"
	"telehealth-consult/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	consultationHandler *handler.ConsultationHandler
	messageHandler      *handler.MessageHandler
	recordingHandler    *handler.RecordingHandler
	faqHandler          *handler.FAQHandler
	patientHandler      *handler.PatientHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	consultationHandler *handler.ConsultationHandler,
	messageHandler *handler.MessageHandler,
	recordingHandler *handler.RecordingHandler,
	faqHandler *handler.FAQHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		consultationHandler: consultationHandler,
		messageHandler:      messageHandler,
		recordingHandler:    recordingHandler,
		faqHandler:          faqHandler,
		patientHandler:      patientHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/admin", r.authHandler.RegisterAdmin).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// FAQ (public)
	api.HandleFunc("/faq/search", r.faqHandler.Search).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/consultations", r.consultationHandler.CreateConsultation).Methods(http.MethodPost)
	patient.HandleFunc("/consultations", r.consultationHandler.ListMyConsultations).Methods(http.MethodGet)

	// Consultation routes shared by the owning patient and admins
	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.Authenticate)
	consultations.HandleFunc("/{id:[0-9]+}", r.consultationHandler.GetConsultation).Methods(http.MethodGet)
	consultations.HandleFunc("/{id:[0-9]+}/messages", r.messageHandler.ListMessages).Methods(http.MethodGet)
	consultations.HandleFunc("/{id:[0-9]+}/messages", r.messageHandler.SendMessage).Methods(http.MethodPost)
	consultations.HandleFunc("/{id:[0-9]+}/recordings", r.recordingHandler.Record).Methods(http.MethodPost)
	consultations.HandleFunc("/{id:[0-9]+}/recordings", r.recordingHandler.GetRecordingStatus).Methods(http.MethodGet)
	consultations.HandleFunc("/{id:[0-9]+}/recordings/{role}", r.recordingHandler.GetRecording).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/consultations", r.consultationHandler.ListConsultations).Methods(http.MethodGet)
	admin.HandleFunc("/consultations/{id:[0-9]+}/status", r.consultationHandler.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	admin.HandleFunc("/faq/reload", r.faqHandler.Reload).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
