package reconciler

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	// DefaultAlertTemplate is rendered once per interest on create
	DefaultAlertTemplate = "There's a new whistle in the {{.Interest}} genre."
	// DefaultSoundName is the sound attached to every notification
	DefaultSoundName = "default"
)

// NotificationTemplate renders the notification attached to a new subscription
type NotificationTemplate struct {
	alert *template.Template
	sound string
}

// ParseTemplate compiles an alert template. The template sees a single
// field, .Interest. An empty sound falls back to DefaultSoundName.
func ParseTemplate(alert, sound string) (*NotificationTemplate, error) {
	t, err := template.New("alert").Option("missingkey=error").Parse(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert template: %w", err)
	}
	if sound == "" {
		sound = DefaultSoundName
	}
	return &NotificationTemplate{alert: t, sound: sound}, nil
}

// DefaultTemplate returns the stock "new whistle" template
func DefaultTemplate() *NotificationTemplate {
	t, err := ParseTemplate(DefaultAlertTemplate, DefaultSoundName)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes the interest into the alert body
func (t *NotificationTemplate) Render(interest Interest) (Notification, error) {
	var b strings.Builder
	if err := t.alert.Execute(&b, struct{ Interest Interest }{interest}); err != nil {
		return Notification{}, fmt.Errorf("failed to render alert for %q: %w", interest, err)
	}
	return Notification{AlertBody: b.String(), SoundName: t.sound}, nil
}
