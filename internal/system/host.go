package system

import (
	"fmt"
	"os"
	"time"
)

// osIdentity reads the machine hostname from the operating system
type osIdentity struct{}

// NewIdentity returns the OS identity source
func NewIdentity() Identity {
	return osIdentity{}
}

func (osIdentity) Hostname() (string, error) {
	return os.Hostname()
}

// FormatUptime renders a duration as HH:MM:SS. Hours are not wrapped at a
// day, so 100 hours renders as "100:00:00".
func FormatUptime(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
