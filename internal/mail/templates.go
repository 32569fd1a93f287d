package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"sitecms/internal/domain/config"
	"strings"
	"time"
)

// ContactMail is one contact form submission.
type ContactMail struct {
	Name    string
	Email   string
	Company string
	Message string
}

// ApplicationMail is one careers submission. ResumeName is the uploaded
// file name; the file itself travels as an attachment.
type ApplicationMail struct {
	Name        string
	Email       string
	Phone       string
	Position    string
	CoverLetter string
	ResumeName  string
}

type templateData struct {
	Company   config.CompanyConfig
	Year      int
	Contact   ContactMail
	Applicant ApplicationMail
}

var templates = template.Must(template.New("").Funcs(templateFuncs()).Parse(`
{{define "footer"}}
<hr style="border:none;border-top:1px solid #e5e7eb;margin:24px 0">
<p style="color:#6b7280;font-size:12px;line-height:1.5">
  <strong>{{.Company.Name}}</strong><br>
  {{range .Company.Address}}{{.}}<br>{{end}}
  {{with .Company.Phone}}Phone: {{.}}<br>{{end}}
  &copy; {{.Year}} {{.Company.Name}}
</p>
{{end}}

{{define "contact-notify"}}
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1e3a8a">New Contact Form Submission</h2>
  <p><strong>Name:</strong> {{.Contact.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Contact.Email}}">{{.Contact.Email}}</a></p>
  {{with .Contact.Company}}<p><strong>Company:</strong> {{.}}</p>{{end}}
  <p><strong>Message:</strong></p>
  <p style="background:#f3f4f6;padding:16px;border-radius:6px">{{lines .Contact.Message}}</p>
  {{template "footer" .}}
</div>
{{end}}

{{define "contact-reply"}}
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1e3a8a">Thank you for reaching out, {{.Contact.Name}}!</h2>
  <p>We have received your message and will get back to you within 24 hours.</p>
  <p><strong>Your message:</strong></p>
  <p style="background:#f3f4f6;padding:16px;border-radius:6px">{{lines .Contact.Message}}</p>
  <p>Best regards,<br>The {{.Company.Name}} Team</p>
  {{template "footer" .}}
</div>
{{end}}

{{define "application-notify"}}
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1e3a8a">New Job Application</h2>
  <p><strong>Position:</strong> {{.Applicant.Position}}</p>
  <p><strong>Name:</strong> {{.Applicant.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Applicant.Email}}">{{.Applicant.Email}}</a></p>
  {{with .Applicant.Phone}}<p><strong>Phone:</strong> {{.}}</p>{{end}}
  {{with .Applicant.CoverLetter}}
  <p><strong>Cover Letter:</strong></p>
  <p style="background:#f3f4f6;padding:16px;border-radius:6px">{{lines .}}</p>
  {{end}}
  {{with .Applicant.ResumeName}}<p><strong>Resume:</strong> {{.}} (attached)</p>{{end}}
  {{template "footer" .}}
</div>
{{end}}

{{define "application-reply"}}
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#1e3a8a">Thank you for applying, {{.Applicant.Name}}!</h2>
  <p>We have received your application for the <strong>{{.Applicant.Position}}</strong> position.</p>
  <p>Our hiring team will review your application and get back to you within 5-7 business days if your qualifications match our requirements.</p>
  <p>Best regards,<br>The {{.Company.Name}} Hiring Team</p>
  {{template "footer" .}}
</div>
{{end}}
`))

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// lines escapes s and keeps its line breaks.
		"lines": func(s string) template.HTML {
			parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
			for i, p := range parts {
				parts[i] = template.HTMLEscapeString(p)
			}
			return template.HTML(strings.Join(parts, "<br>"))
		},
	}
}

func exec(name string, data templateData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("mail template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ContactNotification is the mail the site owner gets for a contact
// submission. Replies go to the submitter.
func ContactNotification(c ContactMail, co config.CompanyConfig, to ...string) (Message, error) {
	html, err := exec("contact-notify", templateData{Company: co, Contact: c})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ReplyTo: c.Email,
		Subject: "New Contact Form Submission from " + c.Name,
		HTML:    html,
	}, nil
}

// ContactReply is the acknowledgement sent back to the submitter.
func ContactReply(c ContactMail, co config.CompanyConfig) (Message, error) {
	html, err := exec("contact-reply", templateData{Company: co, Contact: c})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{c.Email},
		Subject: "Thank you for contacting " + co.Name,
		HTML:    html,
	}, nil
}

func ApplicationNotification(a ApplicationMail, co config.CompanyConfig, resume *Attachment, to ...string) (Message, error) {
	html, err := exec("application-notify", templateData{Company: co, Applicant: a})
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		To:      to,
		ReplyTo: a.Email,
		Subject: fmt.Sprintf("New Job Application: %s - %s", a.Position, a.Name),
		HTML:    html,
	}
	if resume != nil {
		msg.Attachments = []Attachment{*resume}
	}
	return msg, nil
}

func ApplicationReply(a ApplicationMail, co config.CompanyConfig) (Message, error) {
	html, err := exec("application-reply", templateData{Company: co, Applicant: a})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{a.Email},
		Subject: "Application Received - " + co.Name,
		HTML:    html,
	}, nil
}
