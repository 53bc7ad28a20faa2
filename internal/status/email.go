package status

import "fmt"

const (
	fallbackTitle = "Shipment Status Update"
	fallbackIcon  = "📦"
)

// Content is the human copy attached to a status change. It is used for the
// in-app notification and the status email alike.
type Content struct {
	Title   string
	Message string
	Icon    string
}

// EmailContent derives the copy for value from the registry. Unregistered
// values get a generic update message.
func EmailContent(value string) Content {
	d, ok := Lookup(value)
	if !ok {
		return Content{
			Title:   fallbackTitle,
			Message: fmt.Sprintf("Your shipment status has been updated to %s.", value),
			Icon:    fallbackIcon,
		}
	}
	return Content{
		Title:   "Shipment " + d.Label,
		Message: d.Description,
		Icon:    d.Icon,
	}
}

// NotificationTitle is the in-app title for a status change, e.g. "🚚 In Transit".
func NotificationTitle(value string) string {
	c := EmailContent(value)
	if d, ok := Lookup(value); ok {
		return fmt.Sprintf("%s %s", c.Icon, d.Label)
	}
	return fmt.Sprintf("%s %s", c.Icon, c.Title)
}

// NotificationMessage is the in-app message for a status change of the
// shipment identified by trackingNumber.
func NotificationMessage(trackingNumber, value string) string {
	return fmt.Sprintf("Shipment %s: %s", trackingNumber, EmailContent(value).Message)
}
