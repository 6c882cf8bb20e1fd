// Package ws exposes a strip over HTTP: a websocket control channel that
// accepts colors, a websocket stream of diagnostics and a health endpoint.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/funtimes-spiled/internal/diagnostics"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
)

// Strip is the output being controlled. *panel.Panel and *led.NRZ implement
// it.
type Strip interface {
	SetPixels(colors ...rgb.Color) error
	ClearAll() error
	NumLEDs() int
}

// Request is one control message. Pixels carries "RRGGBB" strings, Packed
// carries 0xRRGGBB numbers; only one of them may be set. Clear wins over
// both.
type Request struct {
	Pixels []string `json:"pixels,omitempty"`
	Packed []uint32 `json:"packed,omitempty"`
	Clear  bool     `json:"clear,omitempty"`
}

// colors decodes the request's colors without touching the strip.
func (r Request) colors() ([]rgb.Color, error) {
	if len(r.Pixels) > 0 && len(r.Packed) > 0 {
		return nil, fmt.Errorf("%w: pixels and packed are mutually exclusive", rgb.ErrInvalidColorFormat)
	}
	if len(r.Packed) > 0 {
		out := make([]rgb.Color, len(r.Packed))
		for i, v := range r.Packed {
			out[i] = rgb.FromUint32(v)
		}
		return out, nil
	}
	return rgb.ParseHexes(r.Pixels...)
}

type Response struct {
	OK    bool             `json:"ok"`
	LEDs  int              `json:"leds"`
	Error *diag.Diagnostic `json:"error,omitempty"`
}

type Server struct {
	// mu serializes strip access; a panel is not safe for concurrent use.
	mu     sync.Mutex
	strip  Strip
	driver string
	log    zerolog.Logger

	frames    uint64
	failures  uint64
	startTime time.Time
	last      []rgb.Color

	diagMu      sync.Mutex
	diagClients map[*websocket.Conn]bool
}

func NewServer(s Strip, driver string, log zerolog.Logger) *Server {
	return &Server{
		strip:       s,
		driver:      driver,
		log:         log,
		startTime:   time.Now(),
		diagClients: map[*websocket.Conn]bool{},
	}
}

// Handler routes /control, /diag and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

// Apply runs one request against the strip.
func (s *Server) Apply(req Request) Response {
	s.mu.Lock()
	var err error
	var lit []rgb.Color
	switch {
	case req.Clear:
		err = s.strip.ClearAll()
	default:
		lit, err = req.colors()
		if err == nil {
			err = s.strip.SetPixels(lit...)
		}
	}
	if err != nil {
		s.failures++
	} else {
		s.frames++
		s.last = lit
	}
	n := s.strip.NumLEDs()
	s.mu.Unlock()

	if err != nil {
		d := diag.FromError(err)
		s.log.Warn().Err(err).Str("code", d.Code).Msg("control request failed")
		s.pushDiag(d)
		return Response{OK: false, LEDs: n, Error: &d}
	}
	return Response{OK: true, LEDs: n}
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("control client connected")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = Response{Error: &diag.Diagnostic{
				Severity: diag.Warn, Code: "CONTROL.DECODE", Summary: "Bad control message", Detail: err.Error(),
			}}
		} else {
			resp = s.Apply(req)
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Debug().Err(err).Msg("write control response")
			return
		}
	}
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.diagMu.Lock()
	s.diagClients[conn] = true
	s.diagMu.Unlock()
	go func() {
		defer func() {
			s.diagMu.Lock()
			delete(s.diagClients, conn)
			s.diagMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := make([]string, len(s.last))
	for i, c := range s.last {
		last[i] = c.Hex()
	}
	resp := map[string]any{
		"driver":   s.driver,
		"leds":     s.strip.NumLEDs(),
		"frames":   s.frames,
		"failures": s.failures,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"last":     last,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write diag")
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
