// Package clusterclient implements a cluster-aware HTTP client: given a
// logical service name resolved to a set of replica URLs, it dispatches a
// single logical request to one or more of those replicas according to a
// configurable strategy, ranking replicas by adaptive health and other
// pluggable weight modifiers, retrying and hedging within a shared time
// budget until a satisfactory response is produced or the budget runs out.
//
// The library never talks to sockets directly — transport, topology
// discovery, and the byte-level request/response representation are all
// external collaborators plugged in through Config. What lives here is the
// replica ordering engine, the adaptive health subsystem, the dispatch
// strategies (sequential, parallel, hedged), and the pipeline that wires
// validation, retry, logging, and error handling around a single send.
package clusterclient
