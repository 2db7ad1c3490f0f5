package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/tranaskommun/tranas-forms/internal/service"
	"github.com/tranaskommun/tranas-forms/internal/utils"
)

// Processor runs the submission pipeline.
type Processor interface {
	Process(ctx context.Context, req *service.Request) *service.Result
}

type SubmissionHandler struct {
	svc            Processor
	maxUploadBytes int64
}

func NewSubmissionHandler(svc Processor, maxUploadMB int64) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, maxUploadBytes: maxUploadMB << 20}
}

// POST /api/v1/submit
// Accepts the multipart form posted by the client script and answers with
// {success, message}.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.JSONError(w, http.StatusRequestEntityTooLarge, "The submission is too large.")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "Invalid submission form.")
		return
	}

	req := &service.Request{
		FormID:     r.FormValue("tranas_form_id"),
		FormToken:  r.FormValue("tranas_form_token"),
		DedupToken: r.FormValue("tranas_submission_token"),
		Honeypot:   r.FormValue("hp_field"),
		Values:     r.MultipartForm.Value,
		Files:      r.MultipartForm.File,
		ClientIP:   clientIP(r),
		UserAgent:  r.UserAgent(),
	}

	res := h.svc.Process(r.Context(), req)

	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	utils.JSONResponse(w, status, utils.Payload{
		Success: res.Success,
		Message: res.Message,
	})
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		return strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
