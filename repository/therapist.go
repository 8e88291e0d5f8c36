package repository

import (
	"context"
	"log/slog"

	"github.com/Amaan112005/mindmate/models"
	"gorm.io/gorm"
)

// Therapist-side reads and the relationship bookkeeping. Therapists get
// read access to linked patients' data through these methods only; no
// therapist-scoped write path to tracking or journal tables exists.

func (r *GORMRepository) CreateCareLink(ctx context.Context, link *models.CareLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		slog.Error("Failed to create care link", "error", err)
		return err
	}
	slog.Info("Care link created", "therapist_id", link.TherapistID, "patient_id", link.PatientID)
	return nil
}

func (r *GORMRepository) GetCareLink(ctx context.Context, therapistID, patientID string) (*models.CareLink, error) {
	var link models.CareLink
	err := r.db.WithContext(ctx).
		Where("therapist_id = ? AND patient_id = ? AND active = ?", therapistID, patientID, true).
		First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get care link", "error", err, "therapist_id", therapistID, "patient_id", patientID)
		return nil, err
	}
	return &link, nil
}

func (r *GORMRepository) GetTherapistPatients(ctx context.Context, therapistID string) ([]models.CareLink, error) {
	var links []models.CareLink
	if err := r.db.WithContext(ctx).
		Where("therapist_id = ? AND active = ?", therapistID, true).
		Preload("Patient").
		Order("assigned_at").
		Find(&links).Error; err != nil {
		slog.Error("Failed to get therapist patients", "error", err, "therapist_id", therapistID)
		return nil, err
	}
	return links, nil
}

func (r *GORMRepository) CountTherapistPatients(ctx context.Context, therapistID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CareLink{}).
		Where("therapist_id = ? AND active = ?", therapistID, true).
		Count(&count).Error; err != nil {
		slog.Error("Failed to count therapist patients", "error", err, "therapist_id", therapistID)
		return 0, err
	}
	return count, nil
}

// Session notes
func (r *GORMRepository) CreateSessionNote(ctx context.Context, note *models.SessionNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		slog.Error("Failed to create session note", "error", err)
		return err
	}
	slog.Info("Session note created", "note_id", note.ID, "therapist_id", note.TherapistID, "patient_id", note.PatientID)
	return nil
}

func (r *GORMRepository) GetSessionNotes(ctx context.Context, therapistID, patientID string, limit int) ([]models.SessionNote, error) {
	var notes []models.SessionNote
	query := r.db.WithContext(ctx).
		Where("therapist_id = ? AND patient_id = ?", therapistID, patientID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notes).Error; err != nil {
		slog.Error("Failed to get session notes", "error", err, "therapist_id", therapistID, "patient_id", patientID)
		return nil, err
	}
	return notes, nil
}

// Therapist requests
func (r *GORMRepository) CreateTherapistRequest(ctx context.Context, request *models.TherapistRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		slog.Error("Failed to create therapist request", "error", err)
		return err
	}
	slog.Info("Therapist request created", "request_id", request.ID, "patient_id", request.PatientID, "therapist_id", request.TherapistID)
	return nil
}

func (r *GORMRepository) GetTherapistRequest(ctx context.Context, requestID string) (*models.TherapistRequest, error) {
	var request models.TherapistRequest
	if err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get therapist request", "error", err, "request_id", requestID)
		return nil, err
	}
	return &request, nil
}

func (r *GORMRepository) GetPendingRequests(ctx context.Context, therapistID string) ([]models.TherapistRequest, error) {
	var requests []models.TherapistRequest
	if err := r.db.WithContext(ctx).
		Where("therapist_id = ? AND status = ?", therapistID, models.RequestPending).
		Preload("Patient").
		Order("created_at").
		Find(&requests).Error; err != nil {
		slog.Error("Failed to get pending requests", "error", err, "therapist_id", therapistID)
		return nil, err
	}
	return requests, nil
}

func (r *GORMRepository) GetPatientRequests(ctx context.Context, patientID string) ([]models.TherapistRequest, error) {
	var requests []models.TherapistRequest
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		slog.Error("Failed to get patient requests", "error", err, "patient_id", patientID)
		return nil, err
	}
	return requests, nil
}

func (r *GORMRepository) UpdateTherapistRequest(ctx context.Context, request *models.TherapistRequest) error {
	if err := r.db.WithContext(ctx).Save(request).Error; err != nil {
		slog.Error("Failed to update therapist request", "error", err, "request_id", request.ID)
		return err
	}
	return nil
}
