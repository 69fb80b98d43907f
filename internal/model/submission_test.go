package model

import "testing"

func TestAbsolutize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{
			name: "item link is rewritten",
			base: "http://news.ycombinator.com",
			href: "item?id=42",
			want: "http://news.ycombinator.com/item?id=42",
		},
		{
			name: "trailing slash on base is not doubled",
			base: "http://news.ycombinator.com/",
			href: "item?id=42",
			want: "http://news.ycombinator.com/item?id=42",
		},
		{
			name: "absolute link is unchanged",
			base: "http://news.ycombinator.com",
			href: "https://example.com/a",
			want: "https://example.com/a",
		},
		{
			name: "empty href stays empty",
			base: "http://news.ycombinator.com",
			href: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Absolutize(tt.base, tt.href); got != tt.want {
				t.Errorf("Absolutize(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestItemURL(t *testing.T) {
	t.Parallel()

	if got := ItemURL("http://example.test/", 100); got != "http://example.test/item?id=100" {
		t.Errorf("unexpected item URL: %q", got)
	}
}

func TestSubmission(t *testing.T) {
	t.Parallel()

	s := Submission{ID: 101, Title: "B"}
	if s.DirName() != "101" {
		t.Errorf("expected dir name 101, got %q", s.DirName())
	}
	if s.HasTarget() {
		t.Error("submission without href should have no target")
	}
	s.Href = "http://example.test"
	if !s.HasTarget() {
		t.Error("submission with href should have a target")
	}
}

func TestFetchResult(t *testing.T) {
	t.Parallel()

	t.Run("OK only for 200", func(t *testing.T) {
		t.Parallel()

		var nilResult *FetchResult
		if nilResult.OK() {
			t.Error("nil result must not be OK")
		}
		if (&FetchResult{StatusCode: 404}).OK() {
			t.Error("404 must not be OK")
		}
		if !(&FetchResult{StatusCode: 200}).OK() {
			t.Error("200 must be OK")
		}
	})

	t.Run("media type strips parameters", func(t *testing.T) {
		t.Parallel()

		tests := map[string]string{
			"":                          "text/html",
			"text/html; charset=utf-8":  "text/html",
			"Image/PNG":                 "image/png",
			" application/json ; q=1 ": "application/json",
		}
		for in, want := range tests {
			r := &FetchResult{ContentType: in}
			if got := r.MediaType(); got != want {
				t.Errorf("MediaType(%q) = %q, want %q", in, got, want)
			}
		}
	})
}
