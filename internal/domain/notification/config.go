// internal/domain/notification/config.go
package notification

import "context"

// Subscription crosses an ordered subject list with a recipient set for one kind.
type Subscription struct {
	Kind       Kind
	Window     TriggerWindow
	Subjects   []string // zone codes or zip codes, fetched in this order
	Recipients []int64  // Telegram user IDs
}

// RecipientSet returns the recipients with duplicates removed, keeping first occurrence order.
func (s Subscription) RecipientSet() []int64 {
	seen := make(map[int64]struct{}, len(s.Recipients))
	out := make([]int64, 0, len(s.Recipients))
	for _, id := range s.Recipients {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Config is an immutable snapshot of the notification targets, reloaded on every tick.
type Config struct {
	AdminID       int64  // the only user allowed to run admin commands
	MonitorURL    string // empty disables the health ping
	Subscriptions []Subscription
}

// Subscription returns the subscription for kind, if configured.
func (c *Config) Subscription(kind Kind) (Subscription, bool) {
	for _, s := range c.Subscriptions {
		if s.Kind == kind {
			return s, true
		}
	}
	return Subscription{}, false
}

// ConfigSource produces a fresh snapshot each time it is called.
type ConfigSource interface {
	Load(ctx context.Context) (*Config, error)
}
