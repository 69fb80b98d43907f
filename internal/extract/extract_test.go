package extract

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/hncrawl/internal/model"
)

const testBase = "http://news.example.com"

func indexPage(rows ...string) []byte {
	return []byte("<html><body><table>" + strings.Join(rows, "") + "</table></body></html>")
}

func row(id, title, href string) string {
	return fmt.Sprintf(`<tr class="athing" id="%s"><td><span class="titleline"><a href="%s">%s</a></span></td></tr>`, id, href, title)
}

func TestSubmissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		page  []byte
		limit int
		want  []model.Submission
	}{
		{
			name: "three rows in document order",
			page: indexPage(
				row("100", "A", "http://a.example/x"),
				row("101", "B", "item?id=101"),
				row("102", "C", "http://c.example/"),
			),
			limit: 30,
			want: []model.Submission{
				{ID: 100, Title: "A", Href: "http://a.example/x"},
				{ID: 101, Title: "B", Href: testBase + "/item?id=101"},
				{ID: 102, Title: "C", Href: "http://c.example/"},
			},
		},
		{
			name: "non integer id dropped",
			page: indexPage(
				row("abc", "bad", "http://bad.example/"),
				row("7", "good", "http://good.example/"),
			),
			limit: 30,
			want:  []model.Submission{{ID: 7, Title: "good", Href: "http://good.example/"}},
		},
		{
			name:  "row without title anchor",
			page:  indexPage(`<tr class="athing" id="9"><td>no link</td></tr>`),
			limit: 30,
			want:  []model.Submission{{ID: 9}},
		},
		{
			name:  "submission class matched",
			page:  indexPage(`<tr class="submission" id="11"><td><span class="titleline"><a href="http://x.example/">X</a></span></td></tr>`),
			limit: 30,
			want:  []model.Submission{{ID: 11, Title: "X", Href: "http://x.example/"}},
		},
		{
			name: "first anchor only",
			page: indexPage(`<tr class="athing" id="12"><td><span class="titleline">` +
				`<a href="http://first.example/">First</a> <a href="from?site=x">x</a></span></td></tr>`),
			limit: 30,
			want:  []model.Submission{{ID: 12, Title: "First", Href: "http://first.example/"}},
		},
		{
			name:  "title trimmed",
			page:  indexPage(row("13", "  spaced  ", "http://s.example/")),
			limit: 30,
			want:  []model.Submission{{ID: 13, Title: "spaced", Href: "http://s.example/"}},
		},
		{
			name: "limit caps rows",
			page: indexPage(
				row("1", "a", "http://1.example/"),
				row("2", "b", "http://2.example/"),
				row("3", "c", "http://3.example/"),
			),
			limit: 2,
			want: []model.Submission{
				{ID: 1, Title: "a", Href: "http://1.example/"},
				{ID: 2, Title: "b", Href: "http://2.example/"},
			},
		},
		{
			name: "dropped rows count toward limit",
			page: indexPage(
				row("x", "a", "http://1.example/"),
				row("2", "b", "http://2.example/"),
				row("3", "c", "http://3.example/"),
			),
			limit: 2,
			want:  []model.Submission{{ID: 2, Title: "b", Href: "http://2.example/"}},
		},
		{
			name:  "zero limit",
			page:  indexPage(row("1", "a", "http://1.example/")),
			limit: 0,
			want:  nil,
		},
		{
			name:  "no rows",
			page:  []byte("<html><body><p>maintenance</p></body></html>"),
			limit: 30,
			want:  []model.Submission{},
		},
		{
			name:  "garbage input",
			page:  []byte("<<<>>> \x00 not html"),
			limit: 30,
			want:  []model.Submission{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Submissions(tt.page, testBase, tt.limit)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSubmissionsTitleNormalized(t *testing.T) {
	t.Parallel()

	// "e" followed by a combining acute accent composes to U+00E9.
	page := indexPage(row("5", "cafe\u0301", "http://cafe.example/"))
	got := Submissions(page, testBase, 30)
	if len(got) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(got))
	}
	if got[0].Title != "caf\u00e9" {
		t.Errorf("expected composed title, got %q", got[0].Title)
	}
}

func TestCommentLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want []string
	}{
		{
			name: "links in order across comments",
			page: `<div class="comment"><div class="commtext c00">see <a href="http://x.example/1">one</a> and <a href="http://y.example/2">two</a></div></div>` +
				`<div class="comment"><div class="commtext">also <a href="item?id=42">this</a></div></div>`,
			want: []string{"http://x.example/1", "http://y.example/2", testBase + "/item?id=42"},
		},
		{
			name: "anchors outside comments ignored",
			page: `<a href="http://nav.example/">nav</a><div class="commtext"><a href="http://in.example/">in</a></div>`,
			want: []string{"http://in.example/"},
		},
		{
			name: "anchors without href skipped",
			page: `<div class="commtext"><a name="x">x</a><a href="">empty</a><a href="http://ok.example/">ok</a></div>`,
			want: []string{"http://ok.example/"},
		},
		{
			name: "duplicates kept",
			page: `<div class="commtext"><a href="http://d.example/">1</a></div><div class="commtext"><a href="http://d.example/">2</a></div>`,
			want: []string{"http://d.example/", "http://d.example/"},
		},
		{
			name: "c00 class alone matched",
			page: `<div class="c00"><a href="http://c.example/">c</a></div>`,
			want: []string{"http://c.example/"},
		},
		{
			name: "no comments",
			page: `<html><body>nothing here</body></html>`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CommentLinks([]byte(tt.page), testBase)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	got := Unique([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := Unique(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
