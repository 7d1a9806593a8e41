// Package notification pushes critical alerts to external services through
// shoutrrr URLs. Best effort: a failed push is logged and forgotten, never
// blocking the control path.
package notification

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	gocache "github.com/patrickmn/go-cache"

	"github.com/leafsense/leafsense-go/internal/conf"
	"github.com/leafsense/leafsense-go/internal/logging"
)

// dedupWindow suppresses repeat pushes of an identical alert message.
const dedupWindow = 30 * time.Minute

// Notifier sends alert pushes to the configured service URLs.
type Notifier struct {
	sender *router.ServiceRouter
	dedup  *gocache.Cache
	logger *slog.Logger
}

// New creates a Notifier from settings. Returns nil when notifications are
// disabled, no URLs are configured, or the URLs cannot be turned into a
// sender; callers treat a nil Notifier as disabled.
func New(settings *conf.Settings) *Notifier {
	urls := settings.Realtime.Notification.URLs
	if !settings.Realtime.Notification.Enabled || len(urls) == 0 {
		return nil
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		logging.Warn("notification URLs invalid, pushes disabled", "error", err)
		return nil
	}

	return &Notifier{
		sender: sender,
		dedup:  gocache.New(dedupWindow, time.Hour),
		logger: logging.ForService("notification"),
	}
}

// PushCritical sends one critical alert to every configured service,
// deduplicating identical messages within the dedup window.
func (n *Notifier) PushCritical(message string) {
	if n == nil {
		return
	}
	if _, seen := n.dedup.Get(message); seen {
		return
	}
	n.dedup.Set(message, struct{}{}, dedupWindow)

	errs := n.sender.Send(fmt.Sprintf("LeafSense alert: %s", message), nil)
	for _, err := range errs {
		if err != nil {
			n.logger.Warn("alert push failed", "error", err)
		}
	}
}
