package server

import (
	"context"
	"encoding/json"

	"nepse-gateway/src/dispatch"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/ratelimit"

	"github.com/go-zeromq/zmq4"
)

// -----------------------------------------------------------------------------
// ZMQServer serves the same logical routes over a REP socket. The socket
// carries no client address, so rate limiting tracks the transport as a
// single client.
// -----------------------------------------------------------------------------

const zmqClientIdentity = "zmq"

type zmqRequest struct {
	Route  string            `json:"route"`
	Params map[string]string `json:"params"`
}

type ZMQServer struct {
	Bind     string
	Logger   *logger.Logger
	Registry *dispatch.Registry
	Limiter  *ratelimit.SlidingWindowLimiter

	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------

func NewZMQServer(bind string, registry *dispatch.Registry, limiter *ratelimit.SlidingWindowLimiter, log *logger.Logger) *ZMQServer {
	return &ZMQServer{
		Bind:     bind,
		Logger:   log,
		Registry: registry,
		Limiter:  limiter,
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (z *ZMQServer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	z.cancel = cancel

	sock := zmq4.NewRep(ctx)
	if err := sock.Listen(z.Bind); err != nil {
		cancel()
		return err
	}
	z.Logger.Info("ZMQ server listening on %s", z.Bind)

	go z.serve(ctx, sock)
	return nil
}

// -----------------------------------------------------------------------------

func (z *ZMQServer) Stop() error {
	if z.cancel != nil {
		z.cancel()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Request Loop
// -----------------------------------------------------------------------------

// serve runs the strict REP recv/send cycle. Every received frame gets
// exactly one reply; errors reply as JSON objects so clients never stall
// waiting for the response half of the cycle.
func (z *ZMQServer) serve(ctx context.Context, sock zmq4.Socket) {
	defer sock.Close()

	for {
		msg, err := sock.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			z.Logger.Error("ZMQ receive failed: %v", err)
			continue
		}

		reply := z.handleRequest(ctx, msg.Bytes())
		if err := sock.Send(zmq4.NewMsg(reply)); err != nil {
			if ctx.Err() != nil {
				return
			}
			z.Logger.Error("ZMQ send failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

func (z *ZMQServer) handleRequest(ctx context.Context, raw []byte) []byte {
	var req zmqRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorReply("malformed request: expected JSON with 'route' and 'params'")
	}

	decision := z.Limiter.Admit(zmqClientIdentity, req.Route)
	if !decision.Allowed {
		return errorReply("rate limit exceeded")
	}

	payload, err := z.Registry.Execute(ctx, req.Route, req.Params)
	if err != nil {
		return errorReply(err.Error())
	}
	return payload
}

// -----------------------------------------------------------------------------

func errorReply(message string) []byte {
	reply, _ := json.Marshal(map[string]string{"error": message})
	return reply
}
