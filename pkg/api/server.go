package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/coldchain-labs/inbound/pkg/backend"
	"github.com/coldchain-labs/inbound/pkg/config"
	"github.com/coldchain-labs/inbound/pkg/events"
	"github.com/coldchain-labs/inbound/pkg/health"
	"github.com/coldchain-labs/inbound/pkg/metrics"
	"github.com/coldchain-labs/inbound/pkg/pipeline"
	"github.com/coldchain-labs/inbound/pkg/submit"
)

const (
	serviceName     = "inbound-mcp"
	serverVersion   = "1.0.0"
	defaultProtocol = "2025-03-26"
)

// Server exposes the automation tools over JSON-RPC 2.0 with the MCP
// content envelope
type Server struct {
	cfg     *config.Config
	backend backend.Backend
	orch    *submit.Orchestrator
	pipe    *pipeline.Pipeline
	broker  *events.Broker
	checks  *health.Registry
	slots   *semaphore.Weighted
	engine  *gin.Engine
	httpSrv *http.Server
	logger  zerolog.Logger
}

// NewServer wires the protocol layer over an already constructed backend,
// orchestrator and pipeline. The broker and health registry are optional.
func NewServer(cfg *config.Config, b backend.Backend, orch *submit.Orchestrator, pipe *pipeline.Pipeline, broker *events.Broker, checks *health.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:     cfg,
		backend: b,
		orch:    orch,
		pipe:    pipe,
		broker:  broker,
		checks:  checks,
		slots:   semaphore.NewWeighted(int64(cfg.PoolSize)),
		logger: zerolog.New(os.Stdout).With().
			Str("component", "api").
			Timestamp().
			Logger(),
	}
	s.engine = s.buildRouter()
	return s
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.authMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/tools", s.handleToolsIndex)
	r.GET("/", s.handleRoot)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/events", s.handleEvents)

	// Some MCP clients post to the root, others to /mcp. Same dispatch.
	r.POST("/", s.handleRPC)
	r.POST("/mcp", s.handleRPC)

	return r
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.engine,
	}
	s.logger.Info().
		Str("addr", s.cfg.ListenAddr).
		Str("auth_mode", string(s.cfg.AuthMode)).
		Msg("Starting MCP server")

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	s.logger.Info().Msg("Shutting down MCP server")
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.checks == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
		return
	}
	c.JSON(http.StatusOK, s.checks.Report(c.Request.Context()))
}

func (s *Server) handleToolsIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": toolSchemas()})
}

// handleRoot answers service discovery probes. Clients that open the root
// expecting a server-push stream get pointed at the POST endpoint instead.
func (s *Server) handleRoot(c *gin.Context) {
	if c.NegotiateFormat(gin.MIMEJSON, "text/event-stream") == "text/event-stream" {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "SSE transport not supported on this endpoint",
			"message": "POST JSON-RPC requests to / or /mcp",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service":  serviceName,
		"version":  serverVersion,
		"protocol": "JSON-RPC 2.0",
		"tools": []string{
			toolExtractInboundOrders,
			toolAddToArcadia,
			toolCreateArcadiaOrder,
			toolRunFullPipeline,
		},
		"endpoints": gin.H{
			"rpc":     "/",
			"health":  "/health",
			"tools":   "/tools",
			"events":  "/events",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) handleRPC(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, rpcFailure(nil, codeParseError, "Parse error: "+err.Error(), errData("ParseError")))
		return
	}

	metrics.RPCRequestsTotal.WithLabelValues(req.Method).Inc()
	s.logger.Debug().Str("method", req.Method).Msg("RPC request")

	switch req.Method {
	case "initialize":
		c.JSON(http.StatusOK, rpcResult(req.ID, s.initializeResult(req.Params)))
	case "tools/list":
		c.JSON(http.StatusOK, rpcResult(req.ID, gin.H{"tools": toolSchemas()}))
	case "tools/call":
		s.handleToolsCall(c, req)
	case "":
		c.JSON(http.StatusOK, rpcFailure(req.ID, codeInvalidRequest, "Invalid request: missing method", errData("InvalidRequest")))
	default:
		c.JSON(http.StatusOK, rpcFailure(req.ID, codeMethodNotFound, "Method not found: "+req.Method, errData("MethodNotFound")))
	}
}

func (s *Server) handleToolsCall(c *gin.Context, req rpcRequest) {
	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, rpcFailure(req.ID, codeInvalidParams, "Invalid params: "+err.Error(), errData("ValidationError")))
			return
		}
	}
	if params.Name == "" {
		c.JSON(http.StatusOK, rpcFailure(req.ID, codeInvalidParams, "Invalid params: missing tool name", errData("ValidationError")))
		return
	}

	result, rpcErr := s.callTool(c.Request.Context(), params)
	if rpcErr != nil {
		c.JSON(http.StatusOK, rpcFailure(req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data))
		return
	}
	c.JSON(http.StatusOK, rpcResult(req.ID, result))
}

// initializeResult answers the MCP handshake, echoing the client's
// protocol version when it offers one
func (s *Server) initializeResult(raw json.RawMessage) gin.H {
	version := defaultProtocol
	if len(raw) > 0 {
		var params struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(raw, &params); err == nil && params.ProtocolVersion != "" {
			version = params.ProtocolVersion
		}
	}
	return gin.H{
		"protocolVersion": version,
		"serverInfo": gin.H{
			"name":    serviceName,
			"version": serverVersion,
		},
		"capabilities": gin.H{
			"tools": gin.H{},
		},
	}
}

// handleEvents streams pipeline lifecycle events as server-sent events
func (s *Server) handleEvents(c *gin.Context) {
	if s.broker == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event streaming not enabled"})
		return
	}

	sub := s.broker.Subscribe()
	defer s.broker.Unsubscribe(sub)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
