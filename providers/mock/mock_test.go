package mock

import (
	"context"
	"testing"

	"github.com/ruffel/hostsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMockClient(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	expected := &hostsession.Result{ExitCode: 3}
	c.On("Connect", ctx, mock.AnythingOfType("hostsession.ConnectionInfo")).Return(nil)
	c.On("Execute", ctx, "false", mock.Anything).Return(expected, nil)
	c.On("PutContent", ctx, "data", "/tmp/x").Return(nil)
	c.On("Close").Return(nil)

	require.NoError(t, c.Connect(ctx, hostsession.ConnectionInfo{Host: "h"}))

	res, err := c.Execute(ctx, "false", hostsession.OpConfig{})
	require.NoError(t, err)
	assert.Equal(t, expected, res)

	require.NoError(t, c.PutContent(ctx, "data", "/tmp/x"))
	require.NoError(t, c.Close())

	c.AssertExpectations(t)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	f := NewFactory(a)
	f.Add(b)

	assert.Same(t, a, f.New())
	assert.Same(t, b, f.New())
	assert.Equal(t, 2, f.Created())
	assert.Panics(t, func() { f.New() })
}
