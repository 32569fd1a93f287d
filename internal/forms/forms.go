// Package forms validates contact and careers submissions and relays them
// through a mail transport.
package forms

import (
	"errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	domainerr "sitecms/internal/domain/errors"
	"strings"
)

// MaxResumeSize is the largest accepted resume upload.
const MaxResumeSize = 5 << 20

const (
	MsgMissingFields = "Missing required fields"
	MsgInvalidEmail  = "Invalid email format"
	MsgResumeMissing = "Resume is required"
	MsgResumeTooBig  = "Resume file size must be less than 5MB"
	MsgResumeType    = "Resume must be a PDF, DOC, or DOCX file"
)

type Contact struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Company string `json:"company"`
	Message string `json:"message" validate:"required"`
}

type Resume struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Application struct {
	Name        string `validate:"required"`
	Email       string `validate:"required"`
	Phone       string `validate:"required"`
	Position    string `validate:"required"`
	CoverLetter string
	Resume      *Resume
}

var allowedResumeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// sniffed types a real pdf/doc/docx may detect as; doc and docx fall back to
// their container formats when the detector cannot look deeper.
var sniffedResumeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/x-ole-storage",
	"application/zip",
}

type checker struct {
	v *validator.Validate
}

func newChecker() *checker {
	return &checker{v: validator.New(validator.WithRequiredStructEnabled())}
}

func invalid(field, msg string) error {
	var ve domainerr.ValidationError
	ve.Add(field, msg)
	return ve
}

func (c *checker) required(s any) error {
	err := c.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return invalid(strings.ToLower(fieldErrs[0].Field()), MsgMissingFields)
	}
	return err
}

func (c *checker) email(addr string) error {
	if err := c.v.Var(addr, "email"); err != nil {
		return invalid("email", MsgInvalidEmail)
	}
	return nil
}

func (c *checker) Contact(in *Contact) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Message = strings.TrimSpace(in.Message)
	if err := c.required(in); err != nil {
		return err
	}
	return c.email(in.Email)
}

func (c *checker) Application(in *Application) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	if err := c.required(in); err != nil {
		return err
	}
	if err := c.email(in.Email); err != nil {
		return err
	}
	return checkResume(in.Resume)
}

func checkResume(r *Resume) error {
	if r == nil || len(r.Data) == 0 {
		return invalid("resume", MsgResumeMissing)
	}
	if len(r.Data) > MaxResumeSize {
		return invalid("resume", MsgResumeTooBig)
	}
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(r.ContentType, ";", 2)[0]))
	if !allowedResumeTypes[declared] {
		return invalid("resume", MsgResumeType)
	}
	if !sniffMatches(r.Data) {
		return invalid("resume", MsgResumeType)
	}
	return nil
}

func sniffMatches(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, t := range sniffedResumeTypes {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
