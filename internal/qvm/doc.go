// Package qvm is the HTTP client for qvmd.
//
// It covers both API surfaces the server exposes: the synchronous
// /qvm endpoint (multishot runs, wavefunctions, expectation values and
// the version probe) and the asynchronous /jobs endpoints used for
// queued shot execution, plus the /devices listing.
//
// All requests are JSON over HTTP and accept a context for cancellation
// and deadlines. The client rate-limits itself and retries responses
// the server marks transient (429 and 5xx) with exponential backoff;
// every other non-2xx status is returned as an *HTTPError carrying the
// server's error message.
package qvm
