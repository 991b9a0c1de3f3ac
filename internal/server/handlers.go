// Package server exposes the gateway as an OpenAI-compatible HTTP API. The
// handlers consume the resolver and the provider contract only; nothing here
// branches on vendor identity.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"modelgate/internal/catalog"
	"modelgate/internal/core"
	"modelgate/internal/providers"
)

// Handler holds the HTTP handlers.
type Handler struct {
	resolver *providers.Resolver
	models   catalog.ModelStore
	logger   *slog.Logger
}

// NewHandler creates a handler around the resolver and model catalog.
func NewHandler(resolver *providers.Resolver, models catalog.ModelStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{resolver: resolver, models: models, logger: logger}
}

// ChatCompletion handles POST /v1/chat/completions.
func (h *Handler) ChatCompletion(c echo.Context) error {
	var wireReq chatCompletionRequest
	if err := c.Bind(&wireReq); err != nil {
		return c.JSON(http.StatusBadRequest, newErrorBody("invalid_request_error", "invalid request body: "+err.Error()))
	}
	if wireReq.Model == "" {
		return c.JSON(http.StatusBadRequest, newErrorBody("invalid_request_error", "model is required"))
	}
	if len(wireReq.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, newErrorBody("invalid_request_error", "messages must not be empty"))
	}

	ctx := c.Request().Context()
	res := h.resolver.ResolveWithModel(ctx, wireReq.Model)
	req := wireReq.toDomain()

	if wireReq.Stream {
		return h.streamCompletion(c, res, wireReq.Model, req)
	}

	resp, err := res.Provider.Chat(ctx, res.ProviderModel, req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, toWireResponse(wireReq.Model, resp, time.Now().Unix()))
}

// streamCompletion proxies the provider stream as OpenAI-format SSE,
// finishing with the literal [DONE] event.
func (h *Handler) streamCompletion(c echo.Context, res providers.Resolution, model string, req *core.Request) error {
	if !res.Provider.SupportsStreaming() {
		return c.JSON(http.StatusBadRequest, newErrorBody("invalid_request_error",
			"model "+model+" does not support streaming"))
	}

	stream, err := res.Provider.ChatStream(c.Request().Context(), res.ProviderModel, req)
	if err != nil {
		return h.handleError(c, err)
	}
	defer func() {
		_ = stream.Close()
	}()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	created := time.Now().Unix()
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Headers are already out; all we can do is log and stop.
			h.logger.Warn("stream aborted", "model", model, "error", err)
			break
		}
		if err := writeSSE(c, toWireChunk(model, chunk, created)); err != nil {
			return nil
		}
		if chunk.FinishReason != "" {
			break
		}
	}

	_, _ = c.Response().Write([]byte("data: [DONE]\n\n"))
	c.Response().Flush()
	return nil
}

func writeSSE(c echo.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := c.Response().Write(data); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("\n\n")); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// ListModels handles GET /v1/models in the OpenAI list format.
func (h *Handler) ListModels(c echo.Context) error {
	models := h.models.List(c.Request().Context())

	type modelEntry struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	entries := make([]modelEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, modelEntry{ID: m.ID, Object: "model"})
	}
	return c.JSON(http.StatusOK, map[string]any{"object": "list", "data": entries})
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleError(c echo.Context, err error) error {
	var perr *core.ProviderError
	if errors.As(err, &perr) {
		return c.JSON(statusForProviderError(perr), newErrorBody("provider_error", perr.Message))
	}
	h.logger.Error("unexpected handler error", "error", err)
	return c.JSON(http.StatusInternalServerError, newErrorBody("internal_error", "an unexpected error occurred"))
}
