package hostsession

import "context"

// CopyAsync runs Copy in a new goroutine and reports the outcome to cb.
// cb may be nil.
func (s *Session) CopyAsync(ctx context.Context, src, dest string, cb Callback, opts ...OpOption) {
	go func() {
		res, err := s.Copy(ctx, src, dest, opts...)
		deliver(cb, res, err)
	}()
}

// ExecuteAsync runs Execute in a new goroutine and reports the outcome to cb.
// cb may be nil.
func (s *Session) ExecuteAsync(ctx context.Context, command string, cb Callback, opts ...OpOption) {
	go func() {
		res, err := s.Execute(ctx, command, opts...)
		deliver(cb, res, err)
	}()
}

// ExecuteScriptAsync runs ExecuteScript in a new goroutine and reports the outcome to cb.
// cb may be nil.
func (s *Session) ExecuteScriptAsync(ctx context.Context, scriptFile string, cb Callback, opts ...OpOption) {
	go func() {
		res, err := s.ExecuteScript(ctx, scriptFile, opts...)
		deliver(cb, res, err)
	}()
}

func deliver(cb Callback, res *Result, err error) {
	if cb == nil {
		return
	}

	if err != nil {
		cb(err, 0, nil)

		return
	}

	cb(nil, res.ExitCode, res)
}
