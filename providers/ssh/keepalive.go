package ssh

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const keepAliveRequest = "keepalive@openssh.com"

// startKeepAlive sends a heartbeat every interval until stop is closed.
// A failed heartbeat closes the client so in-flight operations see the error.
func startKeepAlive(client *ssh.Client, interval time.Duration, stop <-chan struct{}, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			if _, _, err := client.SendRequest(keepAliveRequest, true, nil); err != nil {
				logger.Warn("ssh keepalive failed, closing connection", zap.Error(err))

				_ = client.Close()

				return
			}
		}
	}()
}
