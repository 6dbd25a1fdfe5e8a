package hostsession

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const persistentKey = "persistent"

// acquire returns a connected client and the function that releases it.
//
// In keep-alive mode the cached client is returned, connecting it on first use;
// release is a no-op. Otherwise a fresh client is connected and release closes it.
func (s *Session) acquire(ctx context.Context) (Client, func(), error) {
	if s.config.KeepAlive {
		client, err := s.persistentClient(ctx)
		if err != nil {
			return nil, nil, err
		}

		return client, func() {}, nil
	}

	if s.isClosed() {
		return nil, nil, ErrSessionClosed
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if err := client.Close(); err != nil {
			s.logger.Debug("closing connection failed", zap.Error(err))
		}
	}

	return client, release, nil
}

// persistentClient returns the keep-alive client. Concurrent first callers share
// a single in-flight connect. A failed connect is not cached.
func (s *Session) persistentClient(ctx context.Context) (Client, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil, ErrSessionClosed
	}

	if s.persistent != nil {
		client := s.persistent
		s.mu.Unlock()

		return client, nil
	}
	s.mu.Unlock()

	// The shared connect outlives any single caller's cancellation; ReadyTimeout
	// still bounds it. Each caller stops waiting when its own ctx is done.
	ch := s.connectGroup.DoChan(persistentKey, func() (any, error) {
		s.mu.Lock()
		if s.persistent != nil {
			client := s.persistent
			s.mu.Unlock()

			return client, nil
		}
		s.mu.Unlock()

		client, err := s.connect(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed {
			if err := client.Close(); err != nil {
				s.logger.Debug("closing connection failed", zap.Error(err))
			}

			return nil, ErrSessionClosed
		}

		s.persistent = client
		s.logger.Debug("keep-alive connection established")

		return client, nil
	})

	var res singleflight.Result

	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, &ConnectError{Host: s.host, Err: ctx.Err()}
	}

	if res.Err != nil {
		return nil, res.Err
	}

	if res.Shared {
		s.logger.Debug("joined in-flight keep-alive connect")
	}

	client, ok := res.Val.(Client)
	if !ok {
		return nil, fmt.Errorf("unexpected keep-alive client type %T", res.Val)
	}

	return client, nil
}

// connect creates a client and connects it. On failure the client is closed.
func (s *Session) connect(ctx context.Context) (Client, error) {
	info, err := ResolveConnectionInfo(s.host, s.auth, s.config.SSH)
	if err != nil {
		return nil, &ConnectError{Host: s.host, Err: err}
	}

	client := s.newClient()

	s.logger.Debug("connecting",
		zap.String("addr", info.Host),
		zap.Int("port", info.Port),
		zap.String("user", info.Username),
		zap.Duration("ready_timeout", info.ReadyTimeout),
	)

	if err := client.Connect(ctx, info); err != nil {
		_ = client.Close()

		return nil, &ConnectError{Host: info.Host, Err: err}
	}

	return client, nil
}

// withClient runs fn on an acquired client and releases it before returning.
func (s *Session) withClient(ctx context.Context, fn func(Client) (*Result, error)) (*Result, error) {
	client, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer release()

	return fn(client)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
