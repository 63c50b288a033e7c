package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"

	dErrors "members/pkg/domain-errors"
	"members/pkg/platform/httputil"
	"members/pkg/requestcontext"
)

const maxQueryBytes = 1 << 20

// Request is the standard GraphQL-over-HTTP POST body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Handler serves POST /graphql.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

func New(service Service, logger *slog.Logger) (*Handler, error) {
	schema, err := NewSchema(service)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, logger: logger}, nil
}

// Register registers the GraphQL endpoint with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/graphql", h.handleQuery)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid graphql request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if req.Query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query is required"))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		h.logger.WarnContext(ctx, "graphql request returned errors",
			"request_id", requestcontext.RequestID(ctx),
			"operation", req.OperationName,
			"errors", len(result.Errors),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
