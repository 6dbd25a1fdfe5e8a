package hostsession

import (
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const progressWidth = 40

func isTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// progress returns the callback for a file transfer and a function that
// finishes the bar. Both are no-ops unless enabled and the output is a terminal.
func (s *Session) progress(enabled bool) (ProgressFunc, func()) {
	out := s.config.ProgressOutput
	if !enabled || out == nil || !s.isTerminal(int(out.Fd())) {
		return func(int) {}, func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(progressWidth),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	onProgress := func(percent int) {
		_ = bar.Set(percent)
	}

	finish := func() {
		_ = bar.Finish()
	}

	return onProgress, finish
}
