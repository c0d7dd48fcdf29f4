package server

import (
	"context"
	"testing"

	"nepse-gateway/src/models"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestClient(s *GatewayServer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		server:   s,
		identity: "10.0.0.1",
		send:     make(chan interface{}, 4),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func nextResponse(t *testing.T, client *Client) models.MWsResponse {
	t.Helper()

	select {
	case msg := <-client.send:
		resp, ok := msg.(models.MWsResponse)
		require.True(t, ok)
		return resp
	default:
		t.Fatal("no response queued")
		return models.MWsResponse{}
	}
}

// -----------------------------------------------------------------------------

func TestClientMessageExecutesRoute(t *testing.T) {
	s, _ := newTestServer(t)
	client := newTestClient(s)

	s.HandleClientMessage(client, []byte(`{"route":"TopGainers","messageId":"m1"}`))

	resp := nextResponse(t, client)
	require.Equal(t, "m1", resp.MessageID)
	require.Empty(t, resp.Error)
	require.Contains(t, string(resp.Data), "NABIL")
	require.NotNil(t, resp.RateLimit)
}

// -----------------------------------------------------------------------------

func TestClientMessageMalformedFrameKeepsConnection(t *testing.T) {
	s, _ := newTestServer(t)
	client := newTestClient(s)

	s.HandleClientMessage(client, []byte(`{not json`))

	resp := nextResponse(t, client)
	require.Contains(t, resp.Error, "malformed request")
}

// -----------------------------------------------------------------------------

func TestClientMessageRunsUnderConnectionContext(t *testing.T) {
	s, source := newTestServer(t)
	client := newTestClient(s)

	// Dropping the connection cancels the client context; a request executed
	// afterwards must carry that cancellation into the upstream fetch
	client.cancel()
	s.HandleClientMessage(client, []byte(`{"route":"TopGainers","messageId":"m2"}`))

	require.NotNil(t, source.lastCtx)
	require.Error(t, source.lastCtx.Err())
}
