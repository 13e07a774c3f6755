package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ParticipationRecord is the evidence record persisted once per completed
// verification. Records are append-only; duplicate submissions for the same
// (name, email, class_date) triple create duplicate rows.
type ParticipationRecord struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	RequestID        string    `gorm:"column:request_id;index;size:64" json:"request_id"`
	Name             string    `gorm:"column:name;size:255" json:"name"`
	Email            string    `gorm:"column:email;size:255" json:"email"`
	ClassDate        string    `gorm:"column:class_date;index;size:64" json:"class_date"`
	Participation    bool      `gorm:"column:participation" json:"participation"`
	NameMatch        bool      `gorm:"column:name_match" json:"name_match"`
	FaceMatch        bool      `gorm:"column:face_match" json:"face_match"`
	UploadedImageKey string    `gorm:"column:uploaded_image_key;size:512" json:"uploaded_image_key"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the default table name.
func (ParticipationRecord) TableName() string {
	return "participation_records"
}

// ParticipationRepository provides persistence APIs for participation records.
type ParticipationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository creates a new repository instance.
func NewParticipationRepository(db *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// AutoMigrate ensures the schema is available.
func (r *ParticipationRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ParticipationRecord{})
}

// Append persists one record.
func (r *ParticipationRepository) Append(ctx context.Context, rec *ParticipationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindByRequestID retrieves a record by its verification request id.
func (r *ParticipationRepository) FindByRequestID(ctx context.Context, requestID string) (*ParticipationRecord, error) {
	var rec ParticipationRecord
	if err := r.db.WithContext(ctx).First(&rec, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByClassDate returns all records for one class session, newest first.
func (r *ParticipationRepository) ListByClassDate(ctx context.Context, classDate string) ([]ParticipationRecord, error) {
	var recs []ParticipationRecord
	err := r.db.WithContext(ctx).
		Where("class_date = ?", classDate).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
