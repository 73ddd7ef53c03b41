package mailer

import (
	"bytes"
	"embed"
	htmpl "html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var verifyTmpl = htmpl.Must(htmpl.ParseFS(templateFS, "templates/verify_email.html"))

const verifySubject = "Verify your Tailux Crypto account"

type verifyData struct {
	Name string
	Link string
	Year int
}

// VerificationLink is the frontend page that submits token for verification.
func VerificationLink(frontendURL, token string) string {
	return frontendURL + "/verify-email/" + token
}

// VerificationEmail renders the account verification message for a new user.
func VerificationEmail(to, name, link string) (Message, error) {
	if name == "" {
		name = "Trader"
	}
	var buf bytes.Buffer
	if err := verifyTmpl.Execute(&buf, verifyData{Name: name, Link: link, Year: time.Now().Year()}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: verifySubject,
		Text:    "Welcome, " + name + ". Verify your email address: " + link + "\nThis link expires in 7 days.",
		HTML:    buf.String(),
	}, nil
}
