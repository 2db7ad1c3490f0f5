// Package service holds the submission-processing pipeline: authenticate
// the request, validate every field against the form schema, persist
// uploads, deduplicate retried attempts, dispatch the notification mail
// and archive the outcome.
package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tranaskommun/tranas-forms/internal/mail"
	"github.com/tranaskommun/tranas-forms/internal/models"
	"github.com/tranaskommun/tranas-forms/internal/storage"
	"github.com/tranaskommun/tranas-forms/internal/utils"
)

// DefaultSuccessMessage is the reply when a form has no configured one,
// and the reply for honeypot catches.
const DefaultSuccessMessage = "Thank you for your message!"

const (
	msgFormIDMissing  = "Form ID is missing."
	msgSecurityFailed = "Security validation failed. Please reload the page and try again."
	msgSendFailed     = "Could not send the message. Please try again later."
)

// FormSource resolves a form schema by ID.
type FormSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error)
}

// SubmissionStore is the durable archive of submission attempts.
type SubmissionStore interface {
	FindByDedupToken(ctx context.Context, token string) (*models.Submission, error)
	InsertIfAbsent(ctx context.Context, sub *models.Submission) (bool, error)
	UpdateAttempt(ctx context.Context, id uuid.UUID, values models.ValueMap, files models.FileList, mailBody string) error
}

// TokenVerifier checks the anti-forgery token against the form it claims
// to belong to.
type TokenVerifier interface {
	Verify(token string, formID uuid.UUID) error
}

// Request is one raw submission as it came off the wire.
type Request struct {
	FormID     string
	FormToken  string
	DedupToken string
	Honeypot   string
	Values     url.Values
	Files      map[string][]*multipart.FileHeader
	ClientIP   string
	UserAgent  string
}

// Result is the user-facing outcome.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SubmissionService struct {
	forms   FormSource
	store   SubmissionStore
	storage storage.Storage
	mailer  mail.Mailer
	tokens  TokenVerifier

	defaultRecipient string
	adminEmail       string
}

func NewSubmissionService(
	forms FormSource,
	store SubmissionStore,
	st storage.Storage,
	mailer mail.Mailer,
	tokens TokenVerifier,
	defaultRecipient, adminEmail string,
) *SubmissionService {
	return &SubmissionService{
		forms:            forms,
		store:            store,
		storage:          st,
		mailer:           mailer,
		tokens:           tokens,
		defaultRecipient: defaultRecipient,
		adminEmail:       adminEmail,
	}
}

func fail(msg string) *Result    { return &Result{Success: false, Message: msg} }
func succeed(msg string) *Result { return &Result{Success: true, Message: msg} }

// Process runs the full pipeline for one submission. Per unique dedup
// token it dispatches at most one mail and creates or updates at most one
// record; validation failures and honeypot catches touch nothing.
func (s *SubmissionService) Process(ctx context.Context, req *Request) *Result {
	formID, err := uuid.Parse(req.FormID)
	if req.FormID == "" || err != nil {
		return fail(msgFormIDMissing)
	}
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil || form == nil {
		return fail(msgFormIDMissing)
	}

	// Nothing beyond the two tokens is read from the payload before this
	// check passes.
	if req.FormToken == "" || s.tokens.Verify(req.FormToken, formID) != nil {
		return fail(msgSecurityFailed)
	}

	// Bots fill the hidden field; pretend everything went fine and drop
	// the submission on the floor.
	if req.Honeypot != "" {
		return succeed(DefaultSuccessMessage)
	}

	values := make(models.ValueMap, len(form.Fields))
	var (
		errs        []string
		bodyLines   []string
		files       models.FileList
		attachments []string
	)

	for _, field := range form.Fields {
		label := field.Label
		slug := field.Slug()

		if field.Kind == models.FieldFile {
			stored, ferr := s.handleFileUpload(ctx, field, req.Files[slug])
			switch {
			case ferr != nil:
				errs = append(errs, ferr.Error())
			case stored != nil:
				values[label] = models.ScalarValue(stored.Filename)
				bodyLines = append(bodyLines, label+": "+stored.Filename)
				files = append(files, stored.StoredFile)
				if stored.Local {
					attachments = append(attachments, stored.Path)
				}
			case field.Required:
				errs = append(errs, fmt.Sprintf("%s is required.", label))
			}
			continue
		}

		if field.Kind == models.FieldCheckbox {
			raw := req.Values[slug+"[]"]
			clean := make([]string, 0, len(raw))
			for _, v := range raw {
				clean = append(clean, utils.SanitizeText(v))
			}
			// The rendered form plants a marker next to required checkbox
			// groups; without it the required check is skipped.
			marker := req.Values.Get(slug + "__required")
			if field.Required && len(clean) == 0 && marker != "" {
				errs = append(errs, fmt.Sprintf("%s is required.", label))
			}
			values[label] = models.ListValue(clean)
			bodyLines = append(bodyLines, label+": "+strings.Join(clean, ", "))
			continue
		}

		value := utils.SanitizeText(req.Values.Get(slug))
		switch {
		case field.Required && value == "":
			errs = append(errs, fmt.Sprintf("%s is required.", label))
		case field.Kind == models.FieldEmail && value != "" && !utils.IsEmail(value):
			errs = append(errs, fmt.Sprintf("%s must be a valid email address.", label))
		case field.IsChoice() && value != "" && !contains(field.Options, value):
			errs = append(errs, fmt.Sprintf("%s: %q is not one of the available choices.", label, value))
		}
		values[label] = models.ScalarValue(value)
		bodyLines = append(bodyLines, label+": "+value)
	}

	if len(errs) > 0 {
		return fail(strings.Join(errs, " "))
	}

	recipient := form.RecipientEmail
	if recipient == "" {
		recipient = s.defaultRecipient
	}
	if recipient == "" {
		recipient = s.adminEmail
	}

	subject := "New form response: " + form.Title
	body := strings.Join(bodyLines, "\n")

	dedupToken := utils.SanitizeText(req.DedupToken)
	if dedupToken != "" {
		existing, lerr := s.store.FindByDedupToken(ctx, dedupToken)
		if lerr != nil {
			log.Printf("dedup lookup failed: %v", lerr)
		}
		// Retried attempt: the original response was likely lost in
		// transit. Fold any new uploads into the archived record and
		// answer as if this were the first time — no second mail.
		if existing != nil {
			if len(files) > 0 {
				if uerr := s.store.UpdateAttempt(ctx, existing.ID, values, files, body); uerr != nil {
					log.Printf("could not update submission %s: %v", existing.ID, uerr)
				}
			}
			return succeed(successMessage(form))
		}
	} else {
		// Without a client token every attempt is its own submission;
		// mint one so the uniqueness invariant on the column holds.
		dedupToken, err = utils.GenerateSecureToken(24)
		if err != nil {
			return fail(msgSendFailed)
		}
	}

	sendErr := s.mailer.Send(ctx, &mail.Message{
		To:          recipient,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
	})
	mailError := ""
	if sendErr != nil {
		mailError = sendErr.Error()
	}

	// Archive the attempt whether or not the mail went out; a failed
	// delivery still leaves a record with the captured error.
	sub := &models.Submission{
		ID:          uuid.New(),
		FormID:      form.ID,
		DedupToken:  dedupToken,
		Values:      values,
		Files:       files,
		MailTo:      recipient,
		MailSubject: subject,
		MailBody:    body,
		Sent:        sendErr == nil,
		MailError:   mailError,
		ClientIP:    req.ClientIP,
		UserAgent:   req.UserAgent,
	}
	inserted, ierr := s.store.InsertIfAbsent(ctx, sub)
	if ierr != nil {
		// The response is driven by the mail outcome; a persistence
		// failure is logged, not surfaced.
		log.Printf("could not archive submission for form %s: %v", form.ID, ierr)
	} else if !inserted {
		// Lost an insert race against a concurrent retry carrying the
		// same token; the other request's record stands.
		return succeed(successMessage(form))
	}

	if sendErr != nil {
		return fail(msgSendFailed)
	}
	return succeed(successMessage(form))
}

func successMessage(form *models.Form) string {
	if form.SuccessMessage != "" {
		return form.SuccessMessage
	}
	return DefaultSuccessMessage
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// savedUpload pairs the archived file descriptor with delivery details.
type savedUpload struct {
	models.StoredFile
	Local bool
}

// handleFileUpload validates and persists one optional upload. A nil,
// nil return means no file was present; required handling is the
// caller's job so the message ordering matches the other field errors.
func (s *SubmissionService) handleFileUpload(ctx context.Context, field models.FieldSpec, headers []*multipart.FileHeader) (*savedUpload, error) {
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil
	}
	header := headers[0]
	label := field.Label

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	allowed := field.Extensions()
	if !contains(allowed, ext) {
		return nil, fmt.Errorf("%s: The file type %q is not allowed. Allowed types: %s.",
			label, ext, strings.ToUpper(strings.Join(allowed, ", ")))
	}

	if header.Size > field.MaxBytes() {
		return nil, fmt.Errorf("%s: The file is too large. Max size is %d MB.", label, field.SizeLimitMB())
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: Could not read the uploaded file.", label)
	}
	defer src.Close()

	saved, err := s.storage.Save(ctx, src, header.Filename, header.Size)
	if err != nil {
		log.Printf("saving upload for field %q failed: %v", label, err)
		return nil, fmt.Errorf("%s: Could not save the file.", label)
	}

	return &savedUpload{
		StoredFile: models.StoredFile{
			Filename: header.Filename,
			Path:     saved.Path,
			URL:      saved.URL,
			Size:     header.Size,
			Type:     ext,
		},
		Local: saved.Local,
	}, nil
}
