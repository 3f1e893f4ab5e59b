package clusterclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"
)

// DefaultTransport is the built-in Transport backed by net/http. It
// distinguishes a connect-phase timeout (ErrConnectTimeout, classified
// TransportConnectFailure) from a request-phase timeout
// (TransportTimeout) by racing an httptrace.ClientTrace's connection
// hooks against a standalone connect timer, since net/http.Client.Do
// collapses both into the same deadline-exceeded error.
type DefaultTransport struct {
	client *http.Client
}

// NewDefaultTransport wraps client. A nil client uses http.DefaultClient's
// zero-value equivalent (&http.Client{}).
func NewDefaultTransport(client *http.Client) *DefaultTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &DefaultTransport{client: client}
}

func (t *DefaultTransport) Supports(capability Capability) bool {
	switch capability {
	case CapabilityRequestStreaming, CapabilityRequestCompositeBody:
		return true
	default:
		return false
	}
}

func (t *DefaultTransport) Send(ctx context.Context, request Request, connectTimeout, requestTimeout time.Duration) (Response, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if requestTimeout > 0 {
		requestTimer := time.AfterFunc(requestTimeout, cancel)
		defer requestTimer.Stop()
	}

	var connected atomic.Bool
	reqCtx = httptrace.WithClientTrace(reqCtx, &httptrace.ClientTrace{
		GotConn:     func(httptrace.GotConnInfo) { connected.Store(true) },
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				connected.Store(true)
			}
		},
	})

	var connectTimedOut atomic.Bool
	if connectTimeout > 0 {
		connectTimer := time.AfterFunc(connectTimeout, func() {
			if !connected.Load() {
				connectTimedOut.Store(true)
				cancel()
			}
		})
		defer connectTimer.Stop()
	}

	body, err := bodyReader(request.Body)
	if err != nil {
		return noResponse(TransportUnknownFailure), err
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, string(request.Method), request.URL, body)
	if err != nil {
		return noResponse(TransportUnknownFailure), err
	}
	httpReq.Header = request.Headers.Clone()

	resp, err := t.client.Do(httpReq)
	if err != nil {
		switch {
		case connectTimedOut.Load():
			return noResponse(TransportConnectFailure), ErrConnectTimeout
		case ctx.Err() != nil:
			return noResponse(TransportCanceled), ctx.Err()
		case reqCtx.Err() != nil:
			return noResponse(TransportTimeout), err
		default:
			return noResponse(TransportUnknownFailure), err
		}
	}

	return Response{
		StatusCode: resp.StatusCode,
		Category:   ClassifyStatusCode(resp.StatusCode),
		Headers:    resp.Header,
		Body:       Body{Kind: BodyStream, Stream: resp.Body},
		Verdict:    TransportSuccess,
	}, nil
}

func bodyReader(b Body) (io.Reader, error) {
	switch b.Kind {
	case BodyNone:
		return nil, nil
	case BodyBuffer:
		return bytes.NewReader(b.Buffer), nil
	case BodyComposite:
		readers := make([]io.Reader, len(b.Composite))
		for i, chunk := range b.Composite {
			readers[i] = bytes.NewReader(chunk)
		}
		return io.MultiReader(readers...), nil
	case BodyStream:
		return b.Stream, nil
	default:
		return nil, nil
	}
}
