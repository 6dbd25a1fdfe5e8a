package mock

import (
	"context"
	"sync"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/mock"
)

// Client implements a mock hostsession.Client using testify/mock.
type Client struct {
	mock.Mock
}

var _ hostsession.Client = (*Client)(nil)

// New creates a new mock client.
func New() *Client {
	return &Client{}
}

// Connect mocks opening the transport.
func (m *Client) Connect(ctx context.Context, info hostsession.ConnectionInfo) error {
	args := m.Called(ctx, info)

	return args.Error(0)
}

// Execute mocks running a command.
func (m *Client) Execute(ctx context.Context, command string, opts hostsession.OpConfig) (*hostsession.Result, error) {
	args := m.Called(ctx, command, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*hostsession.Result), args.Error(1)
}

// PutFile mocks uploading a local file.
func (m *Client) PutFile(ctx context.Context, localPath, remotePath string, onProgress hostsession.ProgressFunc) error {
	args := m.Called(ctx, localPath, remotePath, onProgress)

	return args.Error(0)
}

// PutContent mocks writing content to a remote file.
func (m *Client) PutContent(ctx context.Context, content, remotePath string) error {
	args := m.Called(ctx, content, remotePath)

	return args.Error(0)
}

// Close mocks closing the transport.
func (m *Client) Close() error {
	args := m.Called()

	return args.Error(0)
}

// Factory hands out prepared clients in order and records how many were requested.
type Factory struct {
	mu      sync.Mutex
	clients []*Client
	created int
}

// NewFactory creates a factory that returns clients in the given order.
func NewFactory(clients ...*Client) *Factory {
	return &Factory{clients: clients}
}

// Add queues more clients.
func (f *Factory) Add(clients ...*Client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clients = append(f.clients, clients...)
}

// New returns the next queued client. It panics when the queue is exhausted,
// which surfaces an unexpected connection in tests.
func (f *Factory) New() hostsession.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.created >= len(f.clients) {
		panic("mock: no more clients queued")
	}

	c := f.clients[f.created]
	f.created++

	return c
}

// Created returns the number of clients handed out.
func (f *Factory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.created
}

// AssertExpectations asserts the expectations of every queued client.
func (f *Factory) AssertExpectations(t mock.TestingT) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	ok := true
	for _, c := range f.clients {
		ok = c.AssertExpectations(t) && ok
	}

	return ok
}
