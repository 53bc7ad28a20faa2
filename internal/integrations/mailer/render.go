package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/BearBump/EuroLink/internal/status"
	"github.com/pkg/errors"
)

// Rendered is a ready-to-send message body.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

var statusTmpl = template.Must(template.New("status").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#1f2933">
<h2>{{.Icon}} {{.Title}}</h2>
<p>{{if .Name}}Hello {{.Name}},{{else}}Hello,{{end}}</p>
<p>{{.Message}}</p>
<table cellpadding="4">
<tr><td><b>Tracking number</b></td><td>{{.TrackingNumber}}</td></tr>
<tr><td><b>Status</b></td><td>{{.Status}}</td></tr>
{{if .Location}}<tr><td><b>Location</b></td><td>{{.Location}}</td></tr>{{end}}
{{if .Notes}}<tr><td><b>Notes</b></td><td>{{.Notes}}</td></tr>{{end}}
</table>
<p>Euro-Link Courier</p>
</body></html>`))

var assignmentTmpl = template.Must(template.New("assignment").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#1f2933">
<h2>🚚 New shipment assigned</h2>
<p>{{if .DriverName}}Hello {{.DriverName}},{{else}}Hello,{{end}}</p>
<p>Shipment {{.TrackingNumber}} has been assigned to you.</p>
<table cellpadding="4">
<tr><td><b>Pickup</b></td><td>{{.PickupLocation}}</td></tr>
<tr><td><b>Drop-off</b></td><td>{{.DropoffLocation}}</td></tr>
</table>
<p>Euro-Link Courier</p>
</body></html>`))

// RenderStatus builds the status email from the status registry copy.
func RenderStatus(e StatusEmail) (*Rendered, error) {
	c := status.EmailContent(e.Status)
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, map[string]string{
		"Icon":           c.Icon,
		"Title":          c.Title,
		"Message":        c.Message,
		"Name":           e.RecipientName,
		"TrackingNumber": e.TrackingNumber,
		"Status":         e.Status,
		"Location":       e.Location,
		"Notes":          e.Notes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render status email")
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n%s\n\nTracking number: %s\nStatus: %s\n", c.Title, c.Message, e.TrackingNumber, e.Status)
	if e.Location != "" {
		fmt.Fprintf(&text, "Location: %s\n", e.Location)
	}
	if e.Notes != "" {
		fmt.Fprintf(&text, "Notes: %s\n", e.Notes)
	}

	return &Rendered{
		Subject: fmt.Sprintf("%s %s (%s)", c.Icon, c.Title, e.TrackingNumber),
		HTML:    buf.String(),
		Text:    text.String(),
	}, nil
}

func RenderDriverAssignment(e DriverAssignmentEmail) (*Rendered, error) {
	var buf bytes.Buffer
	if err := assignmentTmpl.Execute(&buf, e); err != nil {
		return nil, errors.Wrap(err, "render assignment email")
	}
	text := fmt.Sprintf("Shipment %s has been assigned to you.\n\nPickup: %s\nDrop-off: %s\n",
		e.TrackingNumber, e.PickupLocation, e.DropoffLocation)
	return &Rendered{
		Subject: "New shipment assigned: " + e.TrackingNumber,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
