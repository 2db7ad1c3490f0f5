package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/models"
	"github.com/tranaskommun/tranas-forms/internal/utils"
	"github.com/tranaskommun/tranas-forms/internal/web"
)

// FormReader resolves public forms by their human slug.
type FormReader interface {
	GetBySlug(ctx context.Context, slug string) (*models.Form, error)
}

// TokenIssuer mints anti-forgery tokens for rendered forms.
type TokenIssuer interface {
	Issue(formID uuid.UUID) (string, error)
}

type FormHandler struct {
	forms  FormReader
	tokens TokenIssuer
}

func NewFormHandler(forms FormReader, tokens TokenIssuer) *FormHandler {
	return &FormHandler{forms: forms, tokens: tokens}
}

// publicForm is the schema as exposed to visitors; the recipient address
// stays server-side.
type publicForm struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	SubmitLabel string           `json:"submitLabel"`
	Fields      models.FieldList `json:"fields"`
}

// GET /api/v1/forms/{slug}
// Returns the form schema plus a fresh anti-forgery token and dedup token,
// for clients that render the form themselves.
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, tokens, ok := h.resolve(w, r)
	if !ok {
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Form retrieved successfully",
		Data: map[string]any{
			"form": publicForm{
				ID:          form.ID,
				Title:       form.Title,
				Slug:        form.Slug,
				SubmitLabel: submitLabel(form),
				Fields:      form.Fields,
			},
			"formToken":       tokens.formToken,
			"submissionToken": tokens.submissionToken,
		},
	})
}

type fieldView struct {
	ID           string
	Slug         string
	Label        string
	Kind         string
	Required     bool
	Options      []string
	Accept       string
	MaxSizeMB    int
	AllowedLabel string
}

type formView struct {
	Title           string
	FormID          uuid.UUID
	FormToken       string
	SubmissionToken string
	SubmitLabel     string
	Fields          []fieldView
}

// GET /forms/{slug}
// Renders the form as a full HTML page with the hidden tokens and the
// honeypot baked in.
func (h *FormHandler) RenderPage(w http.ResponseWriter, r *http.Request) {
	form, tokens, ok := h.resolve(w, r)
	if !ok {
		return
	}

	view := formView{
		Title:           form.Title,
		FormID:          form.ID,
		FormToken:       tokens.formToken,
		SubmissionToken: tokens.submissionToken,
		SubmitLabel:     submitLabel(form),
	}
	for _, f := range form.Fields {
		slug := f.Slug()
		fv := fieldView{
			ID:       "tf-" + form.ID.String() + "-" + slug,
			Slug:     slug,
			Label:    f.Label,
			Kind:     string(f.Kind),
			Required: f.Required,
			Options:  f.Options,
		}
		if f.Kind == models.FieldFile {
			exts := f.Extensions()
			fv.Accept = "." + strings.Join(exts, ",.")
			fv.AllowedLabel = strings.ToUpper(strings.Join(exts, ", "))
			fv.MaxSizeMB = f.SizeLimitMB()
		}
		view.Fields = append(view.Fields, fv)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.FormPage.Execute(w, view); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not render the form.")
	}
}

type issuedTokens struct {
	formToken       string
	submissionToken string
}

func (h *FormHandler) resolve(w http.ResponseWriter, r *http.Request) (*models.Form, issuedTokens, bool) {
	slug := r.PathValue("slug")
	if slug == "" {
		utils.JSONError(w, http.StatusBadRequest, "Missing form slug")
		return nil, issuedTokens{}, false
	}

	form, err := h.forms.GetBySlug(r.Context(), slug)
	if err != nil || form == nil {
		utils.JSONError(w, http.StatusNotFound, "Form not found")
		return nil, issuedTokens{}, false
	}

	formToken, err := h.tokens.Issue(form.ID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not prepare the form.")
		return nil, issuedTokens{}, false
	}
	// One dedup token per page load; retries of the same interaction
	// reuse it so the server can collapse them.
	submissionToken, err := utils.GenerateSecureToken(24)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Could not prepare the form.")
		return nil, issuedTokens{}, false
	}

	return form, issuedTokens{formToken: formToken, submissionToken: submissionToken}, true
}

func submitLabel(form *models.Form) string {
	if form.SubmitLabel != "" {
		return form.SubmitLabel
	}
	return "Send"
}
