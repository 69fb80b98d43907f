package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewHTTPClient tests client construction.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("requires a timeout", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPClient(Options{})
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("rejects malformed proxy", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPClient(Options{Timeout: time.Second, Proxy: "localhost"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("carries the timeout", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(Options{Timeout: 3 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", client.Timeout)
		}
	})

	t.Run("accepts socks proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPClient(Options{Timeout: time.Second, Proxy: "127.0.0.1:9050"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestHeaderInjection tests that configured headers reach the server.
func TestHeaderInjection(t *testing.T) {
	t.Parallel()

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewHTTPClient(Options{
		Timeout:   5 * time.Second,
		UserAgent: "hncrawl-test",
		Headers:   map[string]string{"Accept-Language": "en"},
		Cookie:    "user=alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Cookie", "pref=1")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if got.Get("User-Agent") != "hncrawl-test" {
		t.Errorf("expected User-Agent hncrawl-test, got %q", got.Get("User-Agent"))
	}
	if got.Get("Accept-Language") != "en" {
		t.Errorf("expected Accept-Language en, got %q", got.Get("Accept-Language"))
	}
	if got.Get("Cookie") != "pref=1; user=alice" {
		t.Errorf("expected merged cookie, got %q", got.Get("Cookie"))
	}
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"127.0.0.1:9050": true,
		"localhost:1":    true,
		"[::1]:9050":     true,
		"localhost":      false,
		":9050":          false,
		"host:0":         false,
		"host:65536":     false,
		"host:abc":       false,
	}
	for addr, want := range tests {
		if got := IsValidProxyAddress(addr); got != want {
			t.Errorf("IsValidProxyAddress(%q) = %v, want %v", addr, got, want)
		}
	}
}

// TestCheckProxy tests the SOCKS5 negotiation check.
func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("socks5 server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return
			}
			_, _ = conn.Write([]byte{socks5Version, socks5AuthNone})
		})

		if status := CheckProxy(context.Background(), addr); status != ProxyStatusOK {
			t.Errorf("expected OK, got %s", status)
		}
	})

	t.Run("socks5 server requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return
			}
			_, _ = conn.Write([]byte{socks5Version, socks5AuthNoAccept})
		})

		if status := CheckProxy(context.Background(), addr); status != ProxyStatusWrongType {
			t.Errorf("expected wrong type, got %s", status)
		}
	})

	t.Run("http server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		status := CheckProxy(context.Background(), server.Listener.Addr().String())
		if status == ProxyStatusOK {
			t.Error("an HTTP server must not pass as a SOCKS5 proxy")
		}
	})

	t.Run("closed port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		status := CheckProxy(context.Background(), addr)
		if status != ProxyStatusCannotConnect {
			t.Errorf("expected cannot connect, got %s", status)
		}
		if !errors.Is(status.Err(), ErrProxyCannotConnect) {
			t.Errorf("unexpected status error %v", status.Err())
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	if ProxyStatusOK.Err() != nil {
		t.Error("OK status must not carry an error")
	}
	for _, s := range []ProxyStatus{ProxyStatusWrongType, ProxyStatusCannotConnect, ProxyStatusTimeout, ProxyStatus(99)} {
		if s.Err() == nil {
			t.Errorf("status %d must carry an error", s)
		}
		if s.String() == "" {
			t.Errorf("status %d must have a description", s)
		}
	}
}

func TestEmbeddedTorNotStarted(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor(WithStartupTimeout(time.Second))
	if e.IsRunning() {
		t.Error("new daemon must not be running")
	}
	if e.SocksAddr() != "" {
		t.Error("new daemon must have no SOCKS address")
	}
	if err := e.Stop(); err != nil {
		t.Errorf("stopping an unstarted daemon should be a no-op, got %v", err)
	}
	if _, err := e.HTTPClient(Options{Timeout: time.Second}); !errors.Is(err, ErrTorNotRunning) {
		t.Errorf("expected ErrTorNotRunning, got %v", err)
	}
}

// serveOnce accepts a single connection on a loopback listener and hands
// it to handle.
func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return ln.Addr().String()
}
