// internal/domain/notification/kind.go
package notification

import (
	"fmt"
	"strings"
)

// Kind identifies one independently configured category of push notification.
type Kind string

const (
	KindAlerts     Kind = "alerts"
	KindUVForecast Kind = "uv_forecast"
)

// Kinds lists every supported kind in evaluation order.
var Kinds = []Kind{KindUVForecast, KindAlerts}

// ParseKind accepts the canonical kind names plus a couple of short aliases used by commands.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alerts", "alert":
		return KindAlerts, nil
	case "uv_forecast", "uv-forecast", "uv":
		return KindUVForecast, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
}
