package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mikey/llm-phish-detector/internal/adapters/credentials"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"github.com/mikey/llm-phish-detector/internal/render"
	"go.uber.org/zap"
)

// DocumentURLHeader carries the page URL of a document posted to /api/analyze
const DocumentURLHeader = "X-Document-URL"

const maxDocumentBytes = 10 << 20

// HTTPServer serves the popup: the API key form, the analysis card and a JSON API
type HTTPServer struct {
	popup          *messaging.Popup
	secrets        core.SecretProvider
	requiresKey    bool
	logger         *zap.Logger
	listenAddr     string
	requestTimeout time.Duration

	mux      *http.ServeMux
	server   *http.Server
	listener net.Listener
}

// NewHTTPServer creates the popup server. requiresKey controls whether the key form
// is shown when no API key is stored.
func NewHTTPServer(
	popup *messaging.Popup,
	secrets core.SecretProvider,
	requiresKey bool,
	logger *zap.Logger,
	listenAddr string,
	requestTimeout time.Duration,
) *HTTPServer {
	s := &HTTPServer{
		popup:          popup,
		secrets:        secrets,
		requiresKey:    requiresKey,
		logger:         logger,
		listenAddr:     listenAddr,
		requestTimeout: requestTimeout,
		mux:            http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handlePopup)
	s.mux.HandleFunc("POST /api-key", s.handleSaveKey)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// Handler returns the routes of the server
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// Start begins listening in the background
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Popup server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once the server has started
func (s *HTTPServer) Addr() string {
	if s.listener == nil {
		return s.listenAddr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for open requests
func (s *HTTPServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handlePopup(w http.ResponseWriter, r *http.Request) {
	if s.requiresKey {
		key, err := s.secrets.APIKey(r.Context())
		if err != nil {
			s.logger.Error("Failed to read API key", zap.Error(err))
			s.writeHTML(w, http.StatusInternalServerError, func(b io.Writer) error {
				return render.ErrorHTML(b, "Could not read the stored API key.")
			})
			return
		}
		if key == "" {
			s.writeHTML(w, http.StatusOK, func(b io.Writer) error {
				return render.APIKeyFormHTML(b, "/api-key", "")
			})
			return
		}
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	resp := s.popup.AnalyzeCurrentEmail(ctx, nil)
	s.writeHTML(w, http.StatusOK, func(b io.Writer) error {
		if resp.Result != nil {
			return render.HTML(b, resp.Result)
		}
		return render.ErrorHTML(b, resp.Error)
	})
}

func (s *HTTPServer) handleSaveKey(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	err := s.secrets.SetAPIKey(r.Context(), r.PostFormValue("api_key"))
	switch {
	case errors.Is(err, credentials.ErrEmptyKey):
		s.writeHTML(w, http.StatusBadRequest, func(b io.Writer) error {
			return render.APIKeyFormHTML(b, "/api-key", "Please enter a valid API key")
		})
		return
	case err != nil:
		s.logger.Error("Failed to save API key", zap.Error(err))
		s.writeHTML(w, http.StatusInternalServerError, func(b io.Writer) error {
			return render.ErrorHTML(b, "Could not save the API key.")
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *HTTPServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, messaging.Response{Error: "Document is too large"})
		return
	}

	var doc *core.Document
	if len(bytes.TrimSpace(body)) > 0 {
		doc = &core.Document{URL: r.Header.Get(DocumentURLHeader), HTML: string(body)}
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	writeJSON(w, http.StatusOK, s.popup.AnalyzeCurrentEmail(ctx, doc))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

func (s *HTTPServer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

// writeHTML renders into a buffer first so template errors become a clean 500
func (s *HTTPServer) writeHTML(w http.ResponseWriter, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
