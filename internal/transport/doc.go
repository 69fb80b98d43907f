// Package transport builds the HTTP clients used by the fetcher.
//
// By default requests go out directly. A SOCKS5 proxy can be configured
// (host:port), or an embedded Tor daemon can be started with tornago and
// used as that proxy. Every client carries a hard request timeout and
// injects the configured User-Agent, extra headers and cookie.
package transport
