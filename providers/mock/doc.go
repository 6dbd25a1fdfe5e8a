// Package mock provides a testify/mock implementation of hostsession.Client.
//
// Client records every call made by a Session; Factory hands out prepared
// clients in order so tests can assert how many connections a Session opened.
//
// Usage:
//
//	c := mock.New()
//	c.On("Connect", mock.Anything, mock.Anything).Return(nil)
//	c.On("Close").Return(nil)
//	f := mock.NewFactory(c)
//	sess, err := hostsession.New("example.com", auth, f.New)
package mock
