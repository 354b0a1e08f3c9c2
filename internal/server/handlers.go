package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NiftySignal/internal/logger"
	"NiftySignal/internal/markethours"
	"NiftySignal/internal/model"
	"NiftySignal/internal/service"
)

const maxMovers = 20

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
		Service:   "niftysignal",
		Version:   s.version,
	})
}

// handleStock serves /api/stocks/{ticker} with the appetite either in the
// path or in ?risk=, plus optional stop_loss/exit_target percentages.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	appetite := r.PathValue("risk")
	if appetite == "" {
		appetite = r.URL.Query().Get("risk")
	}

	custom, err := parseCustomRisk(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if custom != nil && appetite == "" {
		appetite = string(model.RiskCustom)
	}

	a, err := s.svc.Analyze(r.Context(), ticker, appetite, custom)
	if err != nil {
		s.fail(w, r, err, "analyze "+ticker)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func parseCustomRisk(r *http.Request) (*model.CustomRisk, error) {
	q := r.URL.Query()
	sl, ex := q.Get("stop_loss"), q.Get("exit_target")
	if sl == "" && ex == "" {
		return nil, nil
	}
	var c model.CustomRisk
	var err error
	if sl != "" {
		if c.StopLossPct, err = strconv.ParseFloat(sl, 64); err != nil {
			return nil, fmt.Errorf("stop_loss must be a number, got %q", sl)
		}
	}
	if ex != "" {
		if c.ExitTargetPct, err = strconv.ParseFloat(ex, 64); err != nil {
			return nil, fmt.Errorf("exit_target must be a number, got %q", ex)
		}
	}
	return &c, nil
}

func (s *Server) handleTopStocks(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err, "snapshot")
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	n := service.DefaultMovers
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxMovers {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxMovers))
			return
		}
		n = v
	}
	m, err := s.svc.Movers(r.Context(), n)
	if err != nil {
		s.fail(w, r, err, "movers")
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	sent, err := s.svc.Sentiment(r.Context())
	if err != nil {
		s.fail(w, r, err, "sentiment")
		return
	}
	WriteJSON(w, http.StatusOK, sent)
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, markethours.Status(s.now()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.fail(w, r, err, "refresh")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"stocks":       len(snap.Stocks),
		"failed":       snap.Failed,
		"last_updated": snap.LastUpdated,
	})
}

type chatRequest struct {
	Message string `json:"message" validate:"required,min=1,max=500"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "message must be between 1 and 500 characters")
		return
	}

	WriteJSON(w, http.StatusOK, s.bot.Reply(r.Context(), req.Message))
}

// fail logs err against the request and writes the mapped error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	l := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("op", op).Int("status", status).Msg("request failed")
	} else {
		l.Warn().Err(err).Str("op", op).Int("status", status).Msg("request rejected")
	}
	WriteError(w, status, err.Error())
}
