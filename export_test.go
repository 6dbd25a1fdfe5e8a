package hostsession

// SetTerminalCheck replaces the terminal detection used to gate progress bars.
func (s *Session) SetTerminalCheck(fn func(fd int) bool) {
	s.isTerminal = fn
}
