package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"
)

const (
	DefaultPushMessage = "New promotions are waiting for you at Stefano!"
	NotificationTitle  = "Stefano"
	NotificationIcon   = "/icons/icon-192x192.png"
	NotificationBadge  = "/icons/icon-72x72.png"
	primaryKey         = 1
)

// NotificationVibrate is the vibration pattern of every push notification.
var NotificationVibrate = []int{100, 50, 100}

// NotificationData travels with a notification for click handling.
type NotificationData struct {
	DateOfArrival time.Time `json:"dateOfArrival"`
	PrimaryKey    int       `json:"primaryKey"`
}

// Notification is what the push handler asks the system to display.
type Notification struct {
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Badge   string           `json:"badge"`
	Tag     string           `json:"tag"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
}

// Notifier displays notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// TargetSource lists shoutrrr service URLs to deliver to.
type TargetSource interface {
	Targets(ctx context.Context) ([]string, error)
}

// StaticTargets is a fixed TargetSource.
type StaticTargets []string

func (s StaticTargets) Targets(context.Context) ([]string, error) { return s, nil }

// MultiTargets concatenates several sources, skipping empty URLs.
type MultiTargets []TargetSource

func (m MultiTargets) Targets(ctx context.Context) ([]string, error) {
	var out []string
	for _, src := range m {
		urls, err := src.Targets(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

// ShoutrrrNotifier delivers notifications to every target through shoutrrr.
type ShoutrrrNotifier struct {
	targets TargetSource
	logger  *zap.SugaredLogger
}

func NewShoutrrrNotifier(targets TargetSource, logger *zap.SugaredLogger) *ShoutrrrNotifier {
	return &ShoutrrrNotifier{targets: targets, logger: logger}
}

func (n *ShoutrrrNotifier) Notify(ctx context.Context, note Notification) error {
	urls, err := n.targets.Targets(ctx)
	if err != nil {
		return fmt.Errorf("load push targets: %w", err)
	}
	if len(urls) == 0 {
		n.logger.Debugw("push dropped, no targets", "tag", note.Tag)
		return nil
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return fmt.Errorf("create sender: %w", err)
	}
	params := types.Params{"title": note.Title}
	if errs := errors.Join(sender.Send(note.Body, &params)...); errs != nil {
		return fmt.Errorf("send notification: %w", errs)
	}
	n.logger.Infow("push delivered", "tag", note.Tag, "targets", len(urls))
	return nil
}
