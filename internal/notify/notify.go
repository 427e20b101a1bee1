// Package notify raises desktop notifications when an export is written or
// copied to the clipboard.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AppName is reported to the notification service.
const AppName = "snapcanvas"

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires after the flattened PNG is written.
	EventExport Event = "export"
	// EventCopy fires after the flattened PNG is placed on the clipboard.
	EventCopy Event = "copy"
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath points to an image the notification centre may show.
	IconPath string
	Timeout  time.Duration
}

// Preferences holds the notification title and a body template per event.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Snapcanvas",
		Templates: map[Event]string{
			EventExport: "Exported %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// LoadPreferences applies SNAPCANVAS_NOTIFY_TITLE and
// SNAPCANVAS_NOTIFY_<EVENT>_TEXT overrides.
func LoadPreferences(lookup func(string) (string, bool)) Preferences {
	prefs := DefaultPreferences()
	if v, ok := lookup("SNAPCANVAS_NOTIFY_TITLE"); ok && strings.TrimSpace(v) != "" {
		prefs.Title = strings.TrimSpace(v)
	}
	for ev := range prefs.Templates {
		key := "SNAPCANVAS_NOTIFY_" + strings.ToUpper(string(ev)) + "_TEXT"
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			prefs.Templates[ev] = strings.TrimSpace(v)
		}
	}
	return prefs
}

// deliver is swapped in tests.
var deliver = send

// Notifier sends OS-level notifications for enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	log     logrus.FieldLogger
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences, log logrus.FieldLogger) *Notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cloned := Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))}
	for k, v := range prefs.Templates {
		cloned.Templates[k] = v
	}
	return &Notifier{prefs: cloned, enabled: map[Event]bool{}, log: log}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Export announces a written file, using it as the icon when it exists.
func (n *Notifier) Export(ctx context.Context, path string) {
	detail := strings.TrimSpace(path)
	opts := Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(ctx, EventExport, detail, opts)
}

// Copy announces a clipboard copy.
func (n *Notifier) Copy(ctx context.Context, detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(ctx, EventCopy, detail, Options{})
}

func (n *Notifier) dispatch(ctx context.Context, event Event, detail string, opts Options) {
	if n == nil || !n.enabled[event] {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := tmpl
	if strings.Contains(tmpl, "%s") {
		body = fmt.Sprintf(tmpl, strings.TrimSpace(detail))
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if err := deliver(ctx, n.prefs.Title, body, opts); err != nil {
		n.log.WithError(err).WithField("event", event).Warn("notification failed")
	}
}
