package systemd

import (
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"
)

// NotifyReady tells systemd the agent is accepting requests. It reports
// false without error when not running under a Type=notify unit.
func NotifyReady() (bool, error) {
	return notify(daemon.SdNotifyReady)
}

// NotifyStopping tells systemd the agent has begun shutting down
func NotifyStopping() (bool, error) {
	return notify(daemon.SdNotifyStopping)
}

func notify(state string) (bool, error) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		return false, fmt.Errorf("failed to notify systemd (%s): %w", state, err)
	}
	return sent, nil
}
