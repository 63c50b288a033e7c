package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"members/internal/members/graph"
	"members/internal/members/handler"
	membermetrics "members/internal/members/metrics"
	"members/internal/members/models"
	"members/internal/members/service"
	"members/internal/members/store"
	"members/internal/platform/health"
	"members/internal/platform/metrics"
	"members/internal/platform/middleware"
	"members/pkg/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (n *recordingNotifier) Publish(_ context.Context, e models.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) last() models.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

func newTestRouter(t *testing.T) (http.Handler, *recordingNotifier, *health.Checker) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	notifier := &recordingNotifier{}

	svc, err := service.New(store.NewInMemory(nil), notifier,
		service.WithLogger(logger),
		service.WithMetrics(membermetrics.New(reg)),
	)
	require.NoError(t, err)
	gh, err := graph.New(svc, logger)
	require.NoError(t, err)

	checker := health.New()
	router := NewRouter(Dependencies{
		Logger:   logger,
		Members:  handler.New(svc, logger),
		Graph:    gh,
		Health:   checker,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	return router, notifier, checker
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "the member router", func(t *testing.T) {
		router, notifier, checker := newTestRouter(t)

		testutil.When(t, "the schema migration has not finished", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health/startup"))

			testutil.Then(t, "the startup probe reports unavailable", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
			})
		})

		checker.MarkStarted()

		testutil.When(t, "a member is created with a correlation header", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/member", map[string]any{
				"name": "Ana", "section": "Alto", "roles": []string{"Singer"},
			})
			req.Header.Set(middleware.HeaderCorrelationID, "corr-router-1")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it is stored and echoed", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				assert.Equal(t, "corr-router-1", rr.Header().Get(middleware.HeaderCorrelationID))
				assert.NotEmpty(t, rr.Header().Get(middleware.HeaderRequestID))
			})

			testutil.And(t, "the change event carries the header value", func(t *testing.T) {
				e := notifier.last()
				assert.Equal(t, "corr-router-1", e.CorrelationID)
				assert.Equal(t, models.OperationCreated, e.Kind)
			})
		})

		testutil.When(t, "the member is read through GraphQL", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/graphql", map[string]any{
				"query": `{ member(id: 1) { name roles } }`,
			})
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "both adapters see the same record", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				assert.JSONEq(t, `{"data":{"member":{"name":"Ana","roles":["Singer"]}}}`, rr.Body.String())
			})
		})

		testutil.When(t, "an unknown member is requested", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/member/404"))

			testutil.Then(t, "it responds not found", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
			})
		})

		testutil.When(t, "the probes and metrics are scraped", func(t *testing.T) {
			startup := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health/startup"))
			live := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health/live"))
			scrape := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "startup is healthy and counters are exposed", func(t *testing.T) {
				testutil.AssertStatus(t, startup, http.StatusOK)
				testutil.AssertStatus(t, live, http.StatusOK)
				testutil.AssertStatus(t, scrape, http.StatusOK)
				body := scrape.Body.String()
				assert.True(t, strings.Contains(body, "members_added_total 1"), body)
				assert.Contains(t, body, "members_http_request_duration_seconds")
			})
		})
	})
}
