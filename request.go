package clusterclient

import (
	"io"
	"net/http"
)

// Method is one of the enumerated HTTP methods this library understands.
// Requests carrying any other method are rejected by the RequestValidation
// module when Config.ValidateHTTPMethod is set.
type Method string

const (
	MethodGET     Method = "GET"
	MethodPOST    Method = "POST"
	MethodPUT     Method = "PUT"
	MethodHEAD    Method = "HEAD"
	MethodPATCH   Method = "PATCH"
	MethodDELETE  Method = "DELETE"
	MethodOPTIONS Method = "OPTIONS"
	MethodTRACE   Method = "TRACE"
)

var validMethods = map[Method]bool{
	MethodGET: true, MethodPOST: true, MethodPUT: true, MethodHEAD: true,
	MethodPATCH: true, MethodDELETE: true, MethodOPTIONS: true, MethodTRACE: true,
}

// Valid reports whether m is one of the eight enumerated methods.
func (m Method) Valid() bool { return validMethods[m] }

// BodyKind discriminates the body variant a Request or Response carries.
// At most one variant is populated at a time.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyBuffer
	BodyStream
	BodyComposite
)

// Body is the shared request/response payload shape. A streaming body is
// single-use: Stream must not be read from more than one goroutine, and a
// Body carrying BodyStream must never be handed to a strategy that issues
// concurrent attempts (see RequestStrategy.AllowsStreamingBody).
type Body struct {
	Kind      BodyKind
	Buffer    []byte
	Stream    io.ReadCloser
	Composite [][]byte
}

// Streaming reports whether this body is the single-use streaming variant.
func (b Body) Streaming() bool { return b.Kind == BodyStream }

// Len returns the known length of the body, or -1 if it cannot be
// determined without consuming a stream.
func (b Body) Len() int64 {
	switch b.Kind {
	case BodyNone:
		return 0
	case BodyBuffer:
		return int64(len(b.Buffer))
	case BodyComposite:
		var n int64
		for _, c := range b.Composite {
			n += int64(len(c))
		}
		return n
	default:
		return -1
	}
}

// Request is one logical HTTP request. URL may be relative to a replica;
// ReplicaTransform rebases it against the chosen replica's base URL before
// the transport sees it.
type Request struct {
	Method  Method
	URL     string
	Headers http.Header
	Body    Body
}

// NewRequest builds a Request with an empty header set and no body.
func NewRequest(method Method, url string) Request {
	return Request{Method: method, URL: url, Headers: make(http.Header)}
}

// Clone returns a shallow copy of r with an independent header map, so
// RequestTransformation modules can mutate headers without aliasing the
// original request seen by earlier pipeline stages.
func (r Request) Clone() Request {
	c := r
	c.Headers = r.Headers.Clone()
	return c
}
