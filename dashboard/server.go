package dashboard

import (
	_ "embed"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"movie-pipeline/utils"
)

//go:embed web/index.html
var indexHTML []byte

// Server exposes the Engine to a browser.
type Server struct {
	engine   *Engine
	logger   *utils.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a Server for engine.
func NewServer(engine *Engine, logger *utils.Logger) *Server {
	return &Server{
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := r.Group("/api")
	api.GET("/options", s.handleOptions)
	api.GET("/views", s.handleViews)

	r.GET("/ws", s.handleWebsocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Start listens on addr until the process exits.
func (s *Server) Start(addr string) error {
	s.logger.Info("[dashboard] Serving %d movies on http://%s/", s.engine.Context().Len(), displayAddr(addr))
	return s.Router().Run(addr)
}

func (s *Server) handleOptions(c *gin.Context) {
	ctx := s.engine.Context()
	c.JSON(http.StatusOK, gin.H{
		"genres":    ctx.DistinctGenres,
		"countries": ctx.DistinctCountries,
		"year_min":  ctx.YearMin,
		"year_max":  ctx.YearMax,
		"default":   ctx.DefaultFilter(),
	})
}

func (s *Server) handleViews(c *gin.Context) {
	f := s.engine.Context().DefaultFilter()

	for _, p := range []struct {
		name string
		dst  *int
	}{{"year_min", &f.YearMin}, {"year_max", &f.YearMax}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": p.name + " must be an integer"})
			return
		}
		*p.dst = n
	}
	if g := c.Query("genre"); g != "" {
		f.Genre = g
	}
	if ct := c.Query("country"); ct != "" {
		f.Country = ct
	}

	c.JSON(http.StatusOK, s.engine.OnFilterChange(f))
}

// handleWebsocket answers every FilterState message with a fresh set of views.
// Fields missing from a message keep their default values.
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("[dashboard] Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		f := s.engine.Context().DefaultFilter()
		if err := conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("[dashboard] Websocket closed: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(s.engine.OnFilterChange(f)); err != nil {
			s.logger.Debug("[dashboard] Websocket write failed: %v", err)
			return
		}
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
