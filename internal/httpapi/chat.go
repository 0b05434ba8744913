package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"chatd/internal/manager"
	"chatd/pkg/types"
)

// chatHandler validates the request and drives the configured response
// protocol. All per-request errors are turned into the declared response
// shape here; nothing escapes to crash the handler.
func chatHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeJSONError(w, http.StatusUnprocessableEntity, "message is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			z := zlog.Info().Str("path", r.URL.Path).Int("max_tokens", req.MaxTokens)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("chat start")
		}

		// Join the server base context with the request context so shutdown
		// cancels in-flight generation, and a client disconnect abandons the
		// remaining sequence.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		var err error
		if responseMode == ModeJSON {
			err = serveChatJSON(ctx, w, svc, req)
		} else {
			err = serveChatSSE(ctx, w, svc, req, lvl)
		}

		if lvl >= LevelInfo {
			z := zlog.Info().Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			if err != nil {
				z = z.Err(err)
			}
			z.Msg("chat end")
		}
	}
}

// serveChatJSON is the non-streaming variant: one JSON body with the trimmed
// reply.
func serveChatJSON(ctx context.Context, w http.ResponseWriter, svc Service, req types.ChatRequest) error {
	reply, err := svc.Chat(ctx, req)
	if err != nil {
		// Client gone or shutting down: nothing useful to write.
		if ctx.Err() != nil {
			return err
		}
		recordGeneration("error")
		writeJSONError(w, statusForError(err), err.Error())
		return err
	}
	recordGeneration("ok")
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(types.ChatResponse{Reply: reply})
}

// serveChatSSE is the canonical streaming variant. Every non-empty fragment
// becomes one token frame; the stream ends with exactly one [DONE] sentinel
// or exactly one error frame, never both.
func serveChatSSE(ctx context.Context, w http.ResponseWriter, svc Service, req types.ChatRequest, lvl LogLevel) error {
	sw := newSSEWriter(w)
	err := svc.ChatStream(ctx, req, func(tok string) error {
		if tok == "" {
			return nil
		}
		chatTokensTotal.Inc()
		if lvl >= LevelDebug {
			zlog.Debug().Str("token", tok).Msg("chat token")
		}
		return sw.WriteToken(tok)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client disconnect or shutdown mid-stream: abandon the sequence.
			recordGeneration("canceled")
			return err
		}
		recordGeneration("error")
		// Readiness and admission failures happen before any frame is
		// written, so they can still use a proper HTTP status.
		if !sw.Started() && (manager.IsModelNotLoaded(err) || manager.IsTooBusy(err)) {
			writeJSONError(w, statusForError(err), err.Error())
			return err
		}
		_ = sw.WriteError(err.Error())
		return err
	}
	recordGeneration("ok")
	return sw.WriteDone()
}
