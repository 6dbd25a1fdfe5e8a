package ssh

import "github.com/ruffel/hostsession"

// Factory returns a hostsession.ClientFactory producing SSH clients with opts.
func Factory(opts ...Option) hostsession.ClientFactory {
	return func() hostsession.Client {
		return New(opts...)
	}
}

// NewSession creates a hostsession.Session that reaches host over SSH.
func NewSession(host string, auth hostsession.Auth, opts ...hostsession.Option) (*hostsession.Session, error) {
	return hostsession.New(host, auth, Factory(), opts...)
}
