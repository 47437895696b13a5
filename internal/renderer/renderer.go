package renderer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"sjsage522/phdigest/config"
	"sjsage522/phdigest/internal/scraper"
)

//go:embed templates/digest.html templates/digest.txt
var digestTemplates embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(digestTemplates, "templates/digest.html"))
	textTemplate = texttemplate.Must(texttemplate.ParseFS(digestTemplates, "templates/digest.txt"))
)

// Digest is one rendered email, ready for the mailer
type Digest struct {
	Recipient config.Recipient
	Subject   string
	HTML      string
	Text      string
}

// templateData is the input to both digest templates
type templateData struct {
	Greeting string
	Date     string
	Products []scraper.Product
}

// RenderDigest renders the digest email for one recipient. It is a
// pure function of its arguments: identical products, recipient,
// prefix and date produce byte-identical output.
func RenderDigest(products []scraper.Product, recipient config.Recipient, subjectPrefix string, date time.Time) (Digest, error) {
	data := templateData{
		Greeting: greeting(recipient),
		Date:     date.Format("January 2, 2006"),
		Products: products,
	}

	var htmlBuf bytes.Buffer
	if err := htmlTemplate.ExecuteTemplate(&htmlBuf, "digest.html", data); err != nil {
		return Digest{}, fmt.Errorf("render HTML digest: %w", err)
	}

	var textBuf bytes.Buffer
	if err := textTemplate.ExecuteTemplate(&textBuf, "digest.txt", data); err != nil {
		return Digest{}, fmt.Errorf("render text digest: %w", err)
	}

	return Digest{
		Recipient: recipient,
		Subject:   fmt.Sprintf("%s - %s", subjectPrefix, date.Format("2006-01-02")),
		HTML:      htmlBuf.String(),
		Text:      textBuf.String(),
	}, nil
}

// greeting personalizes the opening line; recipients without a name
// get a generic one
func greeting(r config.Recipient) string {
	if r.Name == "" {
		return "Good morning!"
	}
	return fmt.Sprintf("Good morning, %s!", r.Name)
}
