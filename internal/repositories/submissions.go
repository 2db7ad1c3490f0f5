package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionsPerPage matches the admin list page size.
const SubmissionsPerPage = 20

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByDedupToken returns the record carrying the token, or nil when the
// token is unseen.
func (r *SubmissionRepository) FindByDedupToken(ctx context.Context, token string) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).First(&sub, "dedup_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// InsertIfAbsent creates the record unless another one already holds its
// dedup token. The unique index plus ON CONFLICT DO NOTHING makes the
// check-and-insert atomic, so two racing requests with the same token
// cannot both create a row. Returns false when the insert lost to an
// existing record.
func (r *SubmissionRepository) InsertIfAbsent(ctx context.Context, sub *models.Submission) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_token"}},
			DoNothing: true,
		}).
		Create(sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateAttempt overwrites the stored values, file list and mail body of an
// existing record in place. Used when a retried submission carries new
// uploads for a token that was already archived.
func (r *SubmissionRepository) UpdateAttempt(ctx context.Context, id uuid.UUID, values models.ValueMap, files models.FileList, mailBody string) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"values":    values,
			"files":     files,
			"mail_body": mailBody,
		}).Error
}

// ListByForm returns one page of submissions, newest first. A nil form ID
// lists across all forms.
func (r *SubmissionRepository) ListByForm(ctx context.Context, formID uuid.UUID, page int) ([]models.Submission, int64, error) {
	if page < 1 {
		page = 1
	}
	q := r.db.WithContext(ctx).Model(&models.Submission{})
	if formID != uuid.Nil {
		q = q.Where("form_id = ?", formID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Submission
	err := q.Order("created_at desc").
		Limit(SubmissionsPerPage).
		Offset((page - 1) * SubmissionsPerPage).
		Find(&subs).Error
	return subs, total, err
}
