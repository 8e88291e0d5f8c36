package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
)

// MaxPatientsPerTherapist caps active care links per therapist.
const MaxPatientsPerTherapist = 50

// TherapistStore is the slice of the repository the therapist endpoints
// need. Patient data access here is read-only: the only writes are to the
// therapist's own notes, requests and care links.
type TherapistStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAvailableTherapists(ctx context.Context, specialty string) ([]models.User, error)
	CreateCareLink(ctx context.Context, link *models.CareLink) error
	GetCareLink(ctx context.Context, therapistID, patientID string) (*models.CareLink, error)
	GetTherapistPatients(ctx context.Context, therapistID string) ([]models.CareLink, error)
	CountTherapistPatients(ctx context.Context, therapistID string) (int64, error)
	CreateSessionNote(ctx context.Context, note *models.SessionNote) error
	GetSessionNotes(ctx context.Context, therapistID, patientID string, limit int) ([]models.SessionNote, error)
	CreateTherapistRequest(ctx context.Context, request *models.TherapistRequest) error
	GetTherapistRequest(ctx context.Context, requestID string) (*models.TherapistRequest, error)
	GetPendingRequests(ctx context.Context, therapistID string) ([]models.TherapistRequest, error)
	GetPatientRequests(ctx context.Context, patientID string) ([]models.TherapistRequest, error)
	UpdateTherapistRequest(ctx context.Context, request *models.TherapistRequest) error
	GetTrackingEntries(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error)
	GetJournalStats(ctx context.Context, userID string) (*models.JournalStats, error)
}

type TherapistEndpoints struct {
	store TherapistStore
}

type CreateRequestBody struct {
	TherapistID  string `json:"therapist_id"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	PreferredAt  string `json:"preferred_at"` // RFC3339
	Concerns     string `json:"concerns"`
}

type ResolveRequestBody struct {
	Action string `json:"action"` // accept or decline
}

type CreateNoteBody struct {
	Note string `json:"note"`
}

func NewTherapistEndpoints(store TherapistStore) *TherapistEndpoints {
	return &TherapistEndpoints{store: store}
}

// RegisterPatientRoutes mounts the patient-facing routes.
func (e *TherapistEndpoints) RegisterPatientRoutes(r chi.Router) {
	r.Get("/therapists", e.ListTherapistsHandler)
	r.Route("/therapist/requests", func(r chi.Router) {
		r.Post("/", e.CreateRequestHandler)
		r.Get("/mine", e.GetMyRequestsHandler)
	})
}

// RegisterTherapistRoutes mounts the therapist-only routes. Callers must
// wrap these in the therapist role guard.
func (e *TherapistEndpoints) RegisterTherapistRoutes(r chi.Router) {
	r.Route("/therapist", func(r chi.Router) {
		r.Get("/patients", e.GetPatientsHandler)
		r.Get("/patients/{id}", e.GetPatientDetailHandler)
		r.Post("/patients/{id}/notes", e.CreateNoteHandler)
		r.Get("/patients/{id}/notes", e.GetNotesHandler)
		r.Get("/requests", e.GetPendingRequestsHandler)
		r.Put("/requests/{id}", e.ResolveRequestHandler)
	})
}

func (e *TherapistEndpoints) ListTherapistsHandler(w http.ResponseWriter, r *http.Request) {
	therapists, err := e.store.GetAvailableTherapists(r.Context(), r.URL.Query().Get("specialty"))
	if err != nil {
		slog.Error("Failed to list therapists", "error", err)
		http.Error(w, "Failed to list therapists", http.StatusInternalServerError)
		return
	}

	payload := make([]map[string]interface{}, 0, len(therapists))
	for i := range therapists {
		payload = append(payload, userPayload(&therapists[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"therapists": payload,
		"count":      len(payload),
	})
}

func (e *TherapistEndpoints) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.TherapistID == "" || req.ContactName == "" || req.ContactEmail == "" ||
		req.ContactPhone == "" || strings.TrimSpace(req.Concerns) == "" {
		http.Error(w, "therapist_id, contact details and concerns are required", http.StatusBadRequest)
		return
	}

	preferredAt, err := time.Parse(time.RFC3339, req.PreferredAt)
	if err != nil {
		http.Error(w, "preferred_at must be RFC3339", http.StatusBadRequest)
		return
	}
	if preferredAt.Before(time.Now()) {
		http.Error(w, "preferred_at must be in the future", http.StatusBadRequest)
		return
	}

	therapist, err := e.store.GetUserByID(r.Context(), req.TherapistID)
	if err != nil {
		slog.Error("Failed to get therapist", "error", err, "therapist_id", req.TherapistID)
		http.Error(w, "Failed to validate therapist", http.StatusInternalServerError)
		return
	}
	if therapist == nil || therapist.Role != models.RoleTherapist {
		http.Error(w, "Therapist not found", http.StatusNotFound)
		return
	}

	request := models.TherapistRequest{
		PatientID:    user.ID,
		TherapistID:  req.TherapistID,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		PreferredAt:  preferredAt,
		Concerns:     req.Concerns,
		Status:       models.RequestPending,
	}

	if err := e.store.CreateTherapistRequest(r.Context(), &request); err != nil {
		slog.Error("Failed to create therapist request", "error", err, "patient_id", user.ID)
		http.Error(w, "Failed to create request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

func (e *TherapistEndpoints) GetMyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	requests, err := e.store.GetPatientRequests(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get patient requests", "error", err, "patient_id", user.ID)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (e *TherapistEndpoints) GetPatientsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	links, err := e.store.GetTherapistPatients(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get patients", "error", err, "therapist_id", user.ID)
		http.Error(w, "Failed to get patients", http.StatusInternalServerError)
		return
	}

	patients := make([]map[string]interface{}, 0, len(links))
	for i := range links {
		patient := userPayload(&links[i].Patient)
		patient["assigned_at"] = links[i].AssignedAt
		patient["last_login_at"] = links[i].Patient.LastLoginAt
		patients = append(patients, patient)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"patients": patients,
		"count":    len(patients),
	})
}

// GetPatientDetailHandler returns a linked patient's profile plus recent
// mood history and journal stats. Read-only by construction.
func (e *TherapistEndpoints) GetPatientDetailHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	patientID := chi.URLParam(r, "id")
	link, err := e.store.GetCareLink(r.Context(), user.ID, patientID)
	if err != nil {
		slog.Error("Failed to get care link", "error", err, "therapist_id", user.ID, "patient_id", patientID)
		http.Error(w, "Failed to verify relationship", http.StatusInternalServerError)
		return
	}
	if link == nil {
		http.Error(w, "No active care relationship with this patient", http.StatusForbidden)
		return
	}

	patient, err := e.store.GetUserByID(r.Context(), patientID)
	if err != nil || patient == nil {
		slog.Error("Failed to get patient", "error", err, "patient_id", patientID)
		http.Error(w, "Patient not found", http.StatusNotFound)
		return
	}

	moodHistory, err := e.store.GetTrackingEntries(r.Context(), patientID, models.CategoryMood, time.Now().AddDate(0, 0, -7), 0)
	if err != nil {
		slog.Error("Failed to get mood history", "error", err, "patient_id", patientID)
		http.Error(w, "Failed to get patient data", http.StatusInternalServerError)
		return
	}

	journalStats, err := e.store.GetJournalStats(r.Context(), patientID)
	if err != nil {
		slog.Error("Failed to get journal stats", "error", err, "patient_id", patientID)
		http.Error(w, "Failed to get patient data", http.StatusInternalServerError)
		return
	}

	notes, err := e.store.GetSessionNotes(r.Context(), user.ID, patientID, 10)
	if err != nil {
		slog.Error("Failed to get session notes", "error", err, "patient_id", patientID)
		http.Error(w, "Failed to get patient data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile":       userPayload(patient),
		"mood_history":  moodHistory,
		"journal_stats": journalStats,
		"recent_notes":  notes,
	})
}

func (e *TherapistEndpoints) CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	patientID := chi.URLParam(r, "id")
	link, err := e.store.GetCareLink(r.Context(), user.ID, patientID)
	if err != nil {
		slog.Error("Failed to get care link", "error", err, "therapist_id", user.ID, "patient_id", patientID)
		http.Error(w, "Failed to verify relationship", http.StatusInternalServerError)
		return
	}
	if link == nil {
		http.Error(w, "No active care relationship with this patient", http.StatusForbidden)
		return
	}

	var req CreateNoteBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		http.Error(w, "note is required", http.StatusBadRequest)
		return
	}

	note := models.SessionNote{
		TherapistID: user.ID,
		PatientID:   patientID,
		Note:        req.Note,
	}
	if err := e.store.CreateSessionNote(r.Context(), &note); err != nil {
		slog.Error("Failed to create session note", "error", err, "therapist_id", user.ID)
		http.Error(w, "Failed to create note", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(note)
}

func (e *TherapistEndpoints) GetNotesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	patientID := chi.URLParam(r, "id")
	notes, err := e.store.GetSessionNotes(r.Context(), user.ID, patientID, 0)
	if err != nil {
		slog.Error("Failed to get session notes", "error", err, "therapist_id", user.ID)
		http.Error(w, "Failed to get notes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

func (e *TherapistEndpoints) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	requests, err := e.store.GetPendingRequests(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get pending requests", "error", err, "therapist_id", user.ID)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// ResolveRequestHandler accepts or declines a pending request. Accepting
// creates the care link, subject to the patient cap.
func (e *TherapistEndpoints) ResolveRequestHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req ResolveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Action != "accept" && req.Action != "decline" {
		http.Error(w, "action must be accept or decline", http.StatusBadRequest)
		return
	}

	requestID := chi.URLParam(r, "id")
	request, err := e.store.GetTherapistRequest(r.Context(), requestID)
	if err != nil {
		slog.Error("Failed to get request", "error", err, "request_id", requestID)
		http.Error(w, "Failed to get request", http.StatusInternalServerError)
		return
	}
	if request == nil || request.TherapistID != user.ID {
		http.Error(w, "Request not found", http.StatusNotFound)
		return
	}
	if request.Status != models.RequestPending {
		http.Error(w, "Request already resolved", http.StatusConflict)
		return
	}

	if req.Action == "accept" {
		existing, err := e.store.GetCareLink(r.Context(), user.ID, request.PatientID)
		if err != nil {
			slog.Error("Failed to check care link", "error", err, "request_id", requestID)
			http.Error(w, "Failed to resolve request", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			http.Error(w, "Patient already linked", http.StatusConflict)
			return
		}

		count, err := e.store.CountTherapistPatients(r.Context(), user.ID)
		if err != nil {
			slog.Error("Failed to count patients", "error", err, "therapist_id", user.ID)
			http.Error(w, "Failed to resolve request", http.StatusInternalServerError)
			return
		}
		if count >= MaxPatientsPerTherapist {
			http.Error(w, "Patient limit reached", http.StatusConflict)
			return
		}

		link := models.CareLink{
			TherapistID: user.ID,
			PatientID:   request.PatientID,
			Active:      true,
			AssignedAt:  time.Now(),
		}
		if err := e.store.CreateCareLink(r.Context(), &link); err != nil {
			slog.Error("Failed to create care link", "error", err, "request_id", requestID)
			http.Error(w, "Failed to resolve request", http.StatusInternalServerError)
			return
		}
		request.Status = models.RequestAccepted
	} else {
		request.Status = models.RequestDeclined
	}

	if err := e.store.UpdateTherapistRequest(r.Context(), request); err != nil {
		slog.Error("Failed to update request", "error", err, "request_id", requestID)
		http.Error(w, "Failed to resolve request", http.StatusInternalServerError)
		return
	}

	slog.Info("Therapist request resolved", "request_id", requestID, "status", request.Status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}
