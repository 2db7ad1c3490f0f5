package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	var form models.Form
	err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepository) GetBySlug(ctx context.Context, slug string) (*models.Form, error) {
	var form models.Form
	err := r.db.WithContext(ctx).First(&form, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepository) List(ctx context.Context) ([]models.Form, error) {
	var forms []models.Form
	err := r.db.WithContext(ctx).Order("title asc").Find(&forms).Error
	return forms, err
}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	res := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("id = ?", form.ID).
		Updates(map[string]any{
			"title":           form.Title,
			"slug":            form.Slug,
			"fields":          form.Fields,
			"recipient_email": form.RecipientEmail,
			"success_message": form.SuccessMessage,
			"submit_label":    form.SubmitLabel,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
