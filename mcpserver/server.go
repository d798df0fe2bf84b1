package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/paypal-mcp-server-go/internal/jsonrpc"
	"github.com/ggoodman/paypal-mcp-server-go/internal/logctx"
	"github.com/ggoodman/paypal-mcp-server-go/mcp"
	"github.com/ggoodman/paypal-mcp-server-go/stdio"
	"github.com/ggoodman/paypal-mcp-server-go/toolkit"
	"github.com/google/uuid"
)

// errRemoteCancelled is the cancellation cause for requests the client
// cancelled with notifications/cancelled.
var errRemoteCancelled = errors.New("remote cancelled")

// Server dispatches MCP messages to a toolkit.
type Server struct {
	tk           toolkit.Toolkit
	info         mcp.ImplementationInfo
	instructions string
	versions     []string
	l            *slog.Logger

	initialized atomic.Bool

	mu       sync.Mutex
	inflight map[any]*inflightCall
}

// inflightCall is the cancel handle of a running tools/call.
type inflightCall struct {
	cancel context.CancelCauseFunc
}

// New constructs a Server with defaults and applies options.
func New(tk toolkit.Toolkit, opts ...Option) *Server {
	s := &Server{
		tk:       tk,
		info:     mcp.ImplementationInfo{Name: "paypal-mcp-server", Version: "0.1.0"},
		versions: mcp.SupportedProtocolVersions,
		l:        slog.Default(),
		inflight: make(map[any]*inflightCall),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.l = s.l.With(slog.String("server_id", uuid.NewString()))
	return s
}

// Serve starts t and dispatches its messages until the transport closes (for
// example on EOF) or ctx is canceled. Replies are written back through t. It
// waits for in-flight tool calls before returning. Serve returns nil when the
// transport closed and ctx.Err() when the context ended first.
func (s *Server) Serve(ctx context.Context, t *stdio.Transport) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan json.RawMessage, 64)
	t.SetObserver(stdio.ObserverFuncs{
		Message: func(msg json.RawMessage) {
			select {
			case msgs <- msg:
			case <-ctx.Done():
			}
		},
		Error: func(err error) { s.onTransportError(ctx, t, err) },
	})
	if err := t.Start(ctx); err != nil {
		return err
	}
	s.l.InfoContext(ctx, "mcp server serving", slog.Int("tools", len(s.tk.Tools())))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case msg := <-msgs:
			s.handle(ctx, t, msg, &wg)
		case <-t.Done():
			for {
				select {
				case msg := <-msgs:
					s.handle(ctx, t, msg, &wg)
				default:
					s.l.InfoContext(ctx, "mcp server transport closed")
					return nil
				}
			}
		case <-ctx.Done():
			_ = t.Close()
			return ctx.Err()
		}
	}
}

func (s *Server) onTransportError(ctx context.Context, t *stdio.Transport, err error) {
	var fe *stdio.FrameError
	if !errors.As(err, &fe) {
		s.l.ErrorContext(ctx, "stdio stream error", slog.String("err", err.Error()))
		return
	}
	s.l.WarnContext(ctx, "dropping malformed frame", slog.Int64("offset", fe.Offset), slog.String("err", err.Error()))
	s.reply(ctx, t, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, "parse error: "+fe.Err.Error(), nil))
}

func (s *Server) handle(ctx context.Context, t *stdio.Transport, raw json.RawMessage, wg *sync.WaitGroup) {
	var msg jsonrpc.AnyMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.l.WarnContext(ctx, "invalid JSON-RPC message", slog.String("err", err.Error()))
		s.reply(ctx, t, jsonrpc.NewErrorResponse(peekID(raw), jsonrpc.ErrorCodeInvalidRequest, "invalid request: "+err.Error(), nil))
		return
	}

	kind := msg.Type()
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: msg.Method, ID: msg.ID.String(), Type: string(kind)})

	switch kind {
	case jsonrpc.KindResponse:
		s.l.DebugContext(ctx, "ignoring response from client")
	case jsonrpc.KindNotification:
		s.handleNotification(ctx, msg.AsRequest())
	case jsonrpc.KindRequest:
		req := msg.AsRequest()
		if mcp.Method(req.Method) != mcp.ToolsCallMethod {
			s.reply(ctx, t, s.dispatch(ctx, req))
			return
		}

		key := req.ID.Value()
		callCtx, cancel := context.WithCancelCause(ctx)
		call := &inflightCall{cancel: cancel}
		s.mu.Lock()
		if _, dup := s.inflight[key]; dup {
			// The newest call owns the id; the older one can no longer be cancelled.
			s.l.WarnContext(ctx, "duplicate in-flight request id", slog.String("request_id", req.ID.String()))
		}
		s.inflight[key] = call
		s.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				s.mu.Lock()
				if s.inflight[key] == call {
					delete(s.inflight, key)
				}
				s.mu.Unlock()
				cancel(nil)
			}()
			res := s.dispatch(callCtx, req)
			if errors.Is(context.Cause(callCtx), errRemoteCancelled) {
				s.l.DebugContext(callCtx, "suppressing response to cancelled request")
				return
			}
			s.reply(callCtx, t, res)
		}()
	}
}

func (s *Server) handleNotification(ctx context.Context, n *jsonrpc.Request) {
	switch mcp.Method(n.Method) {
	case mcp.InitializedNotificationMethod:
		if s.initialized.CompareAndSwap(false, true) {
			s.l.InfoContext(ctx, "client initialized")
		}
	case mcp.CancelledNotificationMethod:
		var p mcp.CancelledNotification
		if err := json.Unmarshal(n.Params, &p); err != nil || p.RequestID.IsNil() {
			s.l.WarnContext(ctx, "malformed cancellation", slog.String("params", string(n.Params)))
			return
		}
		s.mu.Lock()
		call, ok := s.inflight[p.RequestID.Value()]
		s.mu.Unlock()
		if ok {
			s.l.InfoContext(ctx, "request cancelled by client", slog.String("request_id", p.RequestID.String()), slog.String("reason", p.Reason))
			call.cancel(errRemoteCancelled)
		}
	default:
		s.l.DebugContext(ctx, "ignoring notification")
	}
}

// dispatch answers a single request.
func (s *Server) dispatch(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var (
		result any
		err    error
	)
	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		result, err = s.initialize(ctx, req.Params)
	case mcp.PingMethod:
		result = struct{}{}
	case mcp.ToolsListMethod:
		tools := s.tk.Tools()
		list := &mcp.ListToolsResult{Tools: make([]mcp.Tool, 0, len(tools))}
		for _, tool := range tools {
			list.Tools = append(list.Tools, tool.Tool)
		}
		result = list
	case mcp.ToolsCallMethod:
		result, err = s.callTool(ctx, req.Params)
	default:
		err = jsonrpc.Errorf(jsonrpc.ErrorCodeMethodNotFound, "method not found: %s", req.Method)
	}
	if err != nil {
		s.l.DebugContext(ctx, "request failed", slog.String("err", err.Error()))
		return jsonrpc.ErrorResponseFor(req.ID, err)
	}
	res, err := jsonrpc.NewResultResponse(req.ID, result)
	if err != nil {
		return jsonrpc.ErrorResponseFor(req.ID, err)
	}
	return res
}

func (s *Server) initialize(ctx context.Context, params json.RawMessage) (*mcp.InitializeResult, error) {
	var req mcp.InitializeRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeInvalidParams, "invalid params: %v", err)
	}
	version := s.versions[0]
	if slices.Contains(s.versions, req.ProtocolVersion) {
		version = req.ProtocolVersion
	}
	s.l.InfoContext(ctx, "client connected",
		slog.String("client", req.ClientInfo.Name),
		slog.String("client_version", req.ClientInfo.Version),
		slog.String("requested_protocol", req.ProtocolVersion),
		slog.String("protocol", version),
	)
	return &mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    mcp.ServerCapabilities{Tools: &mcp.ToolsCapability{}},
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}, nil
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (*mcp.CallToolResult, error) {
	var req mcp.CallToolRequestReceived
	if err := json.Unmarshal(params, &req); err != nil || req.Name == "" {
		if err == nil {
			err = errors.New("missing tool name")
		}
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeInvalidParams, "invalid params: %v", err)
	}

	res, err := s.tk.Call(ctx, req.Name, req.Arguments)
	switch {
	case errors.Is(err, toolkit.ErrToolNotFound):
		return nil, jsonrpc.Errorf(jsonrpc.ErrorCodeInvalidParams, "unknown tool: %s", req.Name)
	case err != nil:
		s.l.WarnContext(ctx, "tool call failed", slog.String("tool", req.Name), slog.String("err", err.Error()))
		return mcp.TextResult(err.Error(), true), nil
	}
	return mcp.TextResult(res.Text, res.IsError), nil
}

func (s *Server) reply(ctx context.Context, t *stdio.Transport, res *jsonrpc.Response) {
	if err := t.Send(res); err != nil {
		s.l.ErrorContext(ctx, "failed to write response", slog.String("err", err.Error()))
	}
}

// peekID recovers the id of a message that failed envelope validation so the
// error response can still be correlated.
func peekID(raw json.RawMessage) *jsonrpc.RequestID {
	var probe struct {
		ID *jsonrpc.RequestID `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	return probe.ID
}
