package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/models"
	"github.com/tranaskommun/tranas-forms/internal/repositories"
	"github.com/tranaskommun/tranas-forms/internal/utils"
)

// FormAdminStore is the write side of the form configuration store.
type FormAdminStore interface {
	List(ctx context.Context) ([]models.Form, error)
	Create(ctx context.Context, form *models.Form) error
	Update(ctx context.Context, form *models.Form) error
}

// SubmissionLister pages through archived submissions.
type SubmissionLister interface {
	ListByForm(ctx context.Context, formID uuid.UUID, page int) ([]models.Submission, int64, error)
}

type AdminHandler struct {
	forms FormAdminStore
	subs  SubmissionLister
}

func NewAdminHandler(forms FormAdminStore, subs SubmissionLister) *AdminHandler {
	return &AdminHandler{forms: forms, subs: subs}
}

// GET /api/v1/admin/forms
func (h *AdminHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.List(r.Context())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not list forms")
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Forms retrieved successfully",
		Data:    map[string]any{"forms": forms},
	})
}

type formInput struct {
	Title          string           `json:"title"`
	Slug           string           `json:"slug"`
	Fields         models.FieldList `json:"fields"`
	RecipientEmail string           `json:"recipientEmail"`
	SuccessMessage string           `json:"successMessage"`
	SubmitLabel    string           `json:"submitLabel"`
}

func (in *formInput) toForm() (*models.Form, string) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, "Title must not be empty"
	}
	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(title)
	}
	if slug == "" {
		return nil, "Slug must not be empty"
	}
	if err := in.Fields.Validate(); err != nil {
		return nil, err.Error()
	}
	if in.RecipientEmail != "" && !utils.IsEmail(in.RecipientEmail) {
		return nil, "Recipient email is not a valid address"
	}
	return &models.Form{
		Title:          title,
		Slug:           slug,
		Fields:         in.Fields,
		RecipientEmail: in.RecipientEmail,
		SuccessMessage: strings.TrimSpace(in.SuccessMessage),
		SubmitLabel:    strings.TrimSpace(in.SubmitLabel),
	}, ""
}

// POST /api/v1/admin/forms
// The field schema is validated here, at load time, so submissions never
// meet a malformed form.
func (h *AdminHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var input formInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	form, msg := input.toForm()
	if form == nil {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	form.ID = uuid.New()

	if err := h.forms.Create(r.Context(), form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Could not create the form; is the slug already in use?")
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Form created successfully",
		Data:    map[string]any{"form": form},
	})
}

// PUT /api/v1/admin/forms/{id}
func (h *AdminHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid form ID")
		return
	}

	var input formInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	form, msg := input.toForm()
	if form == nil {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	form.ID = id

	if err := h.forms.Update(r.Context(), form); err != nil {
		if err == repositories.ErrNotFound {
			utils.JSONError(w, http.StatusNotFound, "Form not found")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "Could not update the form")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Form updated successfully",
		Data:    map[string]any{"form": form},
	})
}

// GET /api/v1/admin/submissions?form_id=&page=
// Lists archived submissions newest first, 20 per page, optionally
// filtered to one form. Each entry carries the submitted values, stored
// files, the mail log and the delivery outcome.
func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := uuid.Nil
	if raw := r.URL.Query().Get("form_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, "Invalid form ID")
			return
		}
		formID = parsed
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	subs, total, err := h.subs.ListByForm(r.Context(), formID, page)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not list submissions")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Submissions retrieved successfully",
		Data: map[string]any{
			"submissions": subs,
			"total":       total,
			"page":        page,
			"perPage":     repositories.SubmissionsPerPage,
		},
	})
}
