package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	OfferAcceptedTmpl    *template.Template
	PaymentConfirmedTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	acceptedTmpl, err := template.New("offerAccepted").Parse(offerAcceptedTemplate)
	if err != nil {
		return nil, err
	}

	paymentTmpl, err := template.New("paymentConfirmed").Parse(paymentConfirmedTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		OfferAcceptedTmpl:    acceptedTmpl,
		PaymentConfirmedTmpl: paymentTmpl,
	}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name  string
	Route string
	Price float64
	Link  string
}

// GenerateOfferAcceptedEmailHTML renders the mail sent to a driver whose
// offer was accepted.
func (tm *TemplateManager) GenerateOfferAcceptedEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.OfferAcceptedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GeneratePaymentConfirmedEmailHTML renders the mail sent to a driver when
// the passenger's payment goes through.
func (tm *TemplateManager) GeneratePaymentConfirmedEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.PaymentConfirmedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const offerAcceptedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Your Offer Was Accepted</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Good news, {{.Name}}!</h2>
	<p>A passenger accepted your offer of ${{printf "%.2f" .Price}} for the trip {{.Route}}.</p>
	<p>You can review the trip details here:</p>
	<p><a href="{{.Link}}">View Trip</a></p>
	<p>The passenger will be asked to pay before the trip is confirmed.</p>
</body>
</html>
`

const paymentConfirmedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Payment Received</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Payment received, {{.Name}}</h2>
	<p>The passenger paid ${{printf "%.2f" .Price}} for the trip {{.Route}}. The booking is now confirmed.</p>
	<p><a href="{{.Link}}">View Trip</a></p>
</body>
</html>
`
