package clusterclient

import "net/http"

// StatusCategory buckets an HTTP status code (or the absence of one) into
// the families response criteria reason about.
type StatusCategory int

const (
	CategoryUnknown StatusCategory = iota
	CategoryInformational
	CategorySuccess
	CategoryRedirection
	CategoryClientFailure
	CategoryServerFailure
	CategoryNetworkFailure
)

// ClassifyStatusCode maps a raw HTTP status code to its StatusCategory.
// Codes outside the standard 1xx-5xx ranges classify as CategoryUnknown.
func ClassifyStatusCode(code int) StatusCategory {
	switch {
	case code >= 100 && code < 200:
		return CategoryInformational
	case code >= 200 && code < 300:
		return CategorySuccess
	case code >= 300 && code < 400:
		return CategoryRedirection
	case code >= 400 && code < 500:
		return CategoryClientFailure
	case code >= 500 && code < 600:
		return CategoryServerFailure
	default:
		return CategoryUnknown
	}
}

// TransportVerdict is the opaque outcome a Transport implementation
// reports for one attempt, independent of the response classifier's
// Accept/Reject/DontKnow verdict.
type TransportVerdict int

const (
	TransportSuccess TransportVerdict = iota
	TransportTimeout
	TransportConnectFailure
	TransportContentReuseFailure
	TransportCanceled
	TransportUnknownFailure
)

func (v TransportVerdict) String() string {
	switch v {
	case TransportSuccess:
		return "Success"
	case TransportTimeout:
		return "Timeout"
	case TransportConnectFailure:
		return "ConnectFailure"
	case TransportContentReuseFailure:
		return "ContentReuseFailure"
	case TransportCanceled:
		return "Canceled"
	default:
		return "UnknownFailure"
	}
}

// Response is what a single replica attempt produced: either a real
// answer from the transport, or a synthetic response describing why the
// transport could not produce one (see TransportVerdict).
type Response struct {
	StatusCode int
	Category   StatusCategory
	Headers    http.Header
	Body       Body
	Verdict    TransportVerdict
}

// noResponse is the synthetic "no-response" sentinel a ClusterResult
// carries when no attempt produced anything worth selecting.
func noResponse(verdict TransportVerdict) Response {
	return Response{StatusCode: 0, Category: CategoryUnknown, Headers: make(http.Header), Verdict: verdict}
}
