// Package gateway exposes the bot over Discord's HTTP interactions model:
// Discord POSTs signed interaction payloads to a public endpoint and the
// bot answers synchronously. The package also handles slash-command
// registration against the Discord REST API.
package gateway

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dicemill/outgunned"
)

// InteractionHandler answers interactions. The outgunned.Bot satisfies it.
type InteractionHandler interface {
	HandleInteraction(interaction *outgunned.Interaction) (*outgunned.InteractionResponse, error)
}

// Signature headers Discord sends with every interaction request.
const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// maxInteractionBody caps request bodies; interactions are small.
const maxInteractionBody = 1 << 20

// Server is the interactions endpoint. It verifies request signatures,
// decodes interactions, and writes the handler's synchronous response.
type Server struct {
	Handler   InteractionHandler
	PublicKey ed25519.PublicKey
	Logger    *slog.Logger
}

// NewServer creates an interactions endpoint server. A nil logger falls
// back to the default.
func NewServer(handler InteractionHandler, publicKey ed25519.PublicKey, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Handler: handler, PublicKey: publicKey, Logger: logger}
}

// ServeHTTP implements http.Handler.
func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInteractionBody))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	if !server.verify(r.Header, body) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction outgunned.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		http.Error(w, "decoding interaction", http.StatusBadRequest)
		return
	}

	response, err := server.Handler.HandleInteraction(&interaction)
	if err != nil {
		server.Logger.Error("handling interaction", "interaction_id", interaction.ID, "error", err)
		http.Error(w, "handling interaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		server.Logger.Error("writing interaction response", "interaction_id", interaction.ID, "error", err)
	}
}

// verify checks the ed25519 signature Discord attaches to the request: the
// signed message is the timestamp header concatenated with the raw body.
func (server *Server) verify(header http.Header, body []byte) bool {
	signature, err := hex.DecodeString(header.Get(headerSignature))
	if err != nil || len(signature) != ed25519.SignatureSize {
		return false
	}
	timestamp := header.Get(headerTimestamp)
	if timestamp == "" {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	return ed25519.Verify(server.PublicKey, message, signature)
}

// ListenAndServe runs the endpoint on addr until the context is canceled.
// The listener is wrapped so recoverable accept errors do not take the
// endpoint down.
func (server *Server) ListenAndServe(ctx context.Context, addr string) error {
	rawListener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/interactions", server)

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	server.Logger.Info("interactions endpoint listening", "addr", rawListener.Addr().String())
	err = httpServer.Serve(NewResilientListener(rawListener, server.Logger))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
