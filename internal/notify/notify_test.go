package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"aasbench/internal/regression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackNotifierPostsWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	require.NoError(t, n.Notify(context.Background(), "hello"))
	assert.Equal(t, "hello", got["text"])
}

func TestSlackNotifierMissingURL(t *testing.T) {
	n := NewSlackNotifier("")
	assert.Error(t, n.Notify(context.Background(), "hello"))
}

func TestRegressionMessage(t *testing.T) {
	assert.Empty(t, RegressionMessage("run-1", nil))

	msg := RegressionMessage("run-1", []regression.Comparison{
		{
			Key:            regression.Key{Implementation: "basyx-rust", Dataset: "wide", OperationID: "deserialize"},
			PreviousMeanNs: 1_000_000,
			CurrentMeanNs:  1_300_000,
			DeltaPct:       30,
		},
	})
	assert.Contains(t, msg, "1 performance regression(s) in run run-1")
	assert.Contains(t, msg, "basyx-rust wide/deserialize")
	assert.Contains(t, msg, "+30.0%")
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), "anything"))
}
