package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/firechain/internal/config"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *recordingObserver) WebhookDelivery(result string) {
	o.mu.Lock()
	o.results = append(o.results, result)
	o.mu.Unlock()
}

func newTestWorker(t *testing.T, url string) (*WebhookWorker, *recordingObserver) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "s3cret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	observer := &recordingObserver{}
	return NewWebhookWorker(nil, logger, cfg, observer), observer
}

func testEvent() (IncidentEvent, []byte) {
	event := IncidentEvent{
		EventID:    uuid.New(),
		Type:       EventIncidentReported,
		IncidentID: 1,
		Reporter:   "alice",
		Location:   "Ridge Road",
		Severity:   "High",
		Timestamp:  time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, _ := json.Marshal(event)
	return event, payload
}

func TestProcessWebhookEvent_DeliversSignedPayload(t *testing.T) {
	event, payload := testEvent()

	var (
		gotBody      []byte
		gotSignature string
		gotEventID   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(SignatureHeader)
		gotEventID = r.Header.Get(EventIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	worker, observer := newTestWorker(t, server.URL)
	worker.processWebhookEvent(context.Background(), event, payload)

	assert.Equal(t, payload, gotBody)
	assert.True(t, VerifySignature(gotBody, gotSignature, "s3cret"))
	assert.Equal(t, event.EventID.String(), gotEventID)
	assert.Equal(t, []string{"delivered"}, observer.results)
}

func TestProcessWebhookEvent_RetriesThenSucceeds(t *testing.T) {
	event, payload := testEvent()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	worker, observer := newTestWorker(t, server.URL)
	worker.processWebhookEvent(context.Background(), event, payload)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"delivered"}, observer.results)
}

func TestProcessWebhookEvent_GivesUp(t *testing.T) {
	event, payload := testEvent()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer server.Close()

	worker, observer := newTestWorker(t, server.URL)
	worker.processWebhookEvent(context.Background(), event, payload)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"failed"}, observer.results)
}

func TestProcessWebhookEvent_NoURL(t *testing.T) {
	event, payload := testEvent()
	worker, observer := newTestWorker(t, "")

	worker.processWebhookEvent(context.Background(), event, payload)
	assert.Equal(t, []string{"skipped"}, observer.results)
}

func TestDeliver_ErrorIncludesStatus(t *testing.T) {
	event, payload := testEvent()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer server.Close()

	worker, _ := newTestWorker(t, server.URL)
	err := worker.deliver(context.Background(), event, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
	assert.Contains(t, err.Error(), "teapot")
}

func TestVerifySignature(t *testing.T) {
	data := []byte(`{"incident_id":1}`)
	sig := generateHMACSHA256(data, "key")

	assert.True(t, VerifySignature(data, sig, "key"))
	assert.False(t, VerifySignature(data, sig, "other"))
	assert.False(t, VerifySignature([]byte(`{"incident_id":2}`), sig, "key"))
}
