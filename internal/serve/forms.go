package serve

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/forms"
)

// formMessages are the client-facing texts for one form. Failure detail is
// only logged.
type formMessages struct {
	success       string
	sendFailed    string
	notConfigured string
	internal      string
}

var (
	contactMessages = formMessages{
		success:       "Your message has been sent successfully!",
		sendFailed:    "Failed to send email. Please try again or contact us directly.",
		notConfigured: "Email service not configured. Please contact us directly.",
		internal:      "Internal server error",
	}
	careersMessages = formMessages{
		success:       "Your application has been submitted successfully! We'll be in touch soon.",
		sendFailed:    "Failed to submit application. Please try again or contact us directly.",
		notConfigured: "Application service not configured. Please contact us directly.",
		internal:      "An error occurred while processing your application. Please try again.",
	}
)

const (
	maxContactBody = 1 << 20
	// room for the resume plus the text fields and multipart framing
	maxCareersBody = forms.MaxResumeSize + 1<<20
)

type formResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	UserEmail string `json:"userEmail,omitempty"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var in forms.Contact
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, forms.MsgMissingFields)
		return
	}
	err := s.forms.SubmitContact(r.Context(), in)
	s.finishForm(w, r, "contact", contactMessages, in.Email, err)
}

func (s *Server) handleCareers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCareersBody)
	if err := r.ParseMultipartForm(maxCareersBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, forms.MsgResumeTooBig)
			return
		}
		writeError(w, http.StatusBadRequest, forms.MsgMissingFields)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := forms.Application{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Position:    r.FormValue("position"),
		CoverLetter: r.FormValue("coverLetter"),
	}

	f, hdr, err := r.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		s.log.Warn("read resume failed", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusBadRequest, forms.MsgResumeMissing)
		return
	default:
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, forms.MaxResumeSize+1))
		if err != nil {
			s.log.Error("read resume failed", "request_id", RequestID(r.Context()), "err", err)
			writeError(w, http.StatusInternalServerError, careersMessages.internal)
			return
		}
		in.Resume = &forms.Resume{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	err = s.forms.SubmitApplication(r.Context(), in)
	s.finishForm(w, r, "careers", careersMessages, in.Email, err)
}

func (s *Server) finishForm(w http.ResponseWriter, r *http.Request, form string, msgs formMessages, email string, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, formResponse{Success: true, Message: msgs.success, UserEmail: email})
		return
	}

	var ve domainerr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.First())
	case errors.Is(err, domainerr.ErrNotConfigured):
		s.log.Warn("form rejected, mail not configured", "form", form, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, msgs.notConfigured)
	case errors.Is(err, domainerr.ErrUpstream):
		s.log.Error("form mail failed", "form", form, "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, msgs.sendFailed)
	default:
		s.log.Error("form failed", "form", form, "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, msgs.internal)
	}
}
