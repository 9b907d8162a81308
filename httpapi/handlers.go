package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	nodex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/nodes"
	statex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/state"
)

const maxBodyBytes = 64 << 10

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response string `json:"response"`
	Closing  bool   `json:"closing"`
}

type restartRequest struct {
	SessionID string `json:"session_id"`
}

type historyResponse struct {
	SessionID string              `json:"session_id"`
	Messages  []contractx.Message `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := s.turnContext(r.Context())
	defer cancel()

	reply, err := s.concierge.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Text, Closing: reply.Closing})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req restartRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, cancel := s.turnContext(r.Context())
	defer cancel()

	if _, err := s.concierge.Restart(ctx, req.SessionID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = statex.DefaultSessionID
	}
	msgs, err := s.concierge.History(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Messages: contractx.Visible(msgs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contractx.ErrValidation),
		errors.Is(err, nodex.ErrInvalidMessage),
		errors.Is(err, statex.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("concierge request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a JSON body. An empty body is accepted only when
// allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
