package clusterclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport answers according to a per-replica function keyed by a
// substring of the rebased request URL, so tests can target one replica
// among several without depending on ordering.
type stubTransport struct {
	byURLSubstring map[string]func() (Response, error)
}

func (t *stubTransport) Supports(Capability) bool { return true }

func (t *stubTransport) Send(ctx context.Context, req Request, connectTimeout, requestTimeout time.Duration) (Response, error) {
	for substr, fn := range t.byURLSubstring {
		if strings.Contains(req.URL, substr) {
			return fn()
		}
	}
	return noResponse(TransportUnknownFailure), nil
}

func okResponse() (Response, error) {
	return Response{StatusCode: http.StatusOK, Category: CategorySuccess, Headers: make(http.Header), Verdict: TransportSuccess}, nil
}

func serverErrorResponse() (Response, error) {
	return Response{StatusCode: http.StatusServiceUnavailable, Category: CategoryServerFailure, Headers: make(http.Header), Verdict: TransportSuccess}, nil
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Transport == nil {
		t.Fatal("cfg.Transport must be set")
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = time.Second
	}
	if cfg.MaxReplicasUsedPerRequest == 0 {
		cfg.MaxReplicasUsedPerRequest = 3
	}
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

// duplicatingClusterProvider always hands back the same replica twice, so
// tests can observe whether DeduplicateRequestURL actually merges it.
type duplicatingClusterProvider struct {
	replica Replica
}

func (p duplicatingClusterProvider) GetCluster() ([]Replica, error) {
	return []Replica{p.replica, p.replica}, nil
}

func TestClient_DeduplicateRequestURLMergesDuplicateReplicas(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){"a.example": okResponse}}

	client := newTestClient(t, Config{
		Transport:             transport,
		ClusterProvider:       duplicatingClusterProvider{replica: replicaA},
		DeduplicateRequestURL: true,
		Strategy:              NewSequentialStrategy(NewEqualTimeoutsProvider(time.Second, 5)),
	})
	defer client.Close()

	result, err := client.Send(context.Background(), NewRequest(MethodGET, "/work"))
	require.NoError(t, err)
	assert.Equal(t, ClusterResultSuccess, result.Status)
	assert.Len(t, result.Results, 1, "duplicate replica should have been merged before ordering")
}

func TestClient_SequentialSucceedsOnSecondReplica(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	replicaB := MustReplica("http://b.example")

	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){
		"a.example": serverErrorResponse,
		"b.example": okResponse,
	}}

	// Zeroing B's weight makes the draw pick A first and B second, so the
	// rejected attempt on A always precedes the accepted one on B.
	client := newTestClient(t, Config{
		Transport:       transport,
		ClusterProvider: NewStaticClusterProvider(replicaA, replicaB),
		WeightModifiers: []WeightModifier{constantWeightModifier{weights: map[Replica]float64{replicaB: 0}}},
		Strategy:        NewSequentialStrategy(NewEqualTimeoutsProvider(time.Second, 2)),
	})
	defer client.Close()

	result, err := client.Send(context.Background(), NewRequest(MethodGET, "/work"))
	require.NoError(t, err)
	assert.Equal(t, ClusterResultSuccess, result.Status)
	assert.Equal(t, http.StatusOK, result.Response.StatusCode)
	assert.Len(t, result.Results, 2)
}

func TestClient_RetryPolicyRunsAnotherPassAfterFailure(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	attempts := 0
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){
		"a.example": func() (Response, error) {
			attempts++
			if attempts < 2 {
				return serverErrorResponse()
			}
			return okResponse()
		},
	}}

	client := newTestClient(t, Config{
		Transport:       transport,
		ClusterProvider: NewStaticClusterProvider(replicaA),
		RetryPolicy:     NewMaxAttemptsRetryPolicy(3),
	})
	defer client.Close()

	result, err := client.Send(context.Background(), NewRequest(MethodGET, "/work"))
	require.NoError(t, err)
	assert.Equal(t, ClusterResultSuccess, result.Status)
	assert.GreaterOrEqual(t, len(result.Results), 2)
}

func TestClient_ThrottleRejectsOnceFloorExceeded(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){
		"a.example": serverErrorResponse,
	}}

	client := newTestClient(t, Config{
		Transport:       transport,
		ClusterProvider: NewStaticClusterProvider(replicaA),
		Throttle:        &ThrottleConfig{MinimumRequests: 1, MinimumRatio: 2, RejectionProbabilityCap: 1},
	})
	defer client.Close()

	var sawThrottled bool
	for i := 0; i < 20; i++ {
		result, err := client.Send(context.Background(), NewRequest(MethodGET, "/work"))
		require.NoError(t, err)
		if result.Status == ClusterResultThrottled {
			sawThrottled = true
			break
		}
	}
	assert.True(t, sawThrottled, "expected throttle to eventually reject a request once the minimum-requests floor was exceeded")
}

func TestClient_RequestValidationRejectsInvalidMethod(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){"a.example": okResponse}}

	client := newTestClient(t, Config{
		Transport:          transport,
		ClusterProvider:    NewStaticClusterProvider(replicaA),
		ValidateHTTPMethod: true,
	})
	defer client.Close()

	result, err := client.Send(context.Background(), Request{Method: "BOGUS", URL: "/work", Headers: make(http.Header)})
	require.NoError(t, err)
	assert.Equal(t, ClusterResultIncorrectArguments, result.Status)
}

func TestClient_BudgetExhaustionYieldsTimeExpired(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){
		"a.example": func() (Response, error) {
			time.Sleep(5 * time.Millisecond)
			return serverErrorResponse()
		},
	}}

	client, err := New(Config{
		Transport:                 transport,
		ClusterProvider:           NewStaticClusterProvider(replicaA),
		DefaultTimeout:            time.Millisecond,
		ConnectTimeout:            time.Millisecond,
		MaxReplicasUsedPerRequest: 1,
	})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Send(context.Background(), NewRequest(MethodGET, "/work"))
	require.NoError(t, err)
	assert.Equal(t, ClusterResultTimeExpired, result.Status)
}

func TestClient_StreamingBodyWithParallelStrategyRejected(t *testing.T) {
	replicaA := MustReplica("http://a.example")
	replicaB := MustReplica("http://b.example")
	transport := &stubTransport{byURLSubstring: map[string]func() (Response, error){
		"a.example": okResponse,
		"b.example": okResponse,
	}}

	client := newTestClient(t, Config{
		Transport:       transport,
		ClusterProvider: NewStaticClusterProvider(replicaA, replicaB),
		Strategy:        NewParallelStrategy(2, NewEqualTimeoutsProvider(time.Second, 2)),
	})
	defer client.Close()

	req := NewRequest(MethodPOST, "/work")
	req.Body = Body{Kind: BodyStream, Stream: io.NopCloser(strings.NewReader("payload"))}

	result, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ClusterResultIncorrectArguments, result.Status)
}
