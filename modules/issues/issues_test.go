package issues

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const issueListing = `[
	{"number": 101, "title": "Read The Go Programming Language", "state": "open",
	 "html_url": "https://github.com/acme/books/issues/101",
	 "labels": [{"name": "part-7"}], "user": {"login": "alice"}},
	{"number": 102, "title": "Read SICP", "state": "open",
	 "html_url": "https://github.com/acme/books/issues/102",
	 "labels": [{"name": "proposal"}], "user": {"login": "bob"}},
	{"number": 103, "title": "Read TAPL", "state": "open",
	 "html_url": "https://github.com/acme/books/issues/103",
	 "labels": [{"name": "part-8"}, {"name": "proposal"}], "user": {"login": "carol"}}
]`

func withServer(t *testing.T, handler http.HandlerFunc) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	old := apiUrl
	apiUrl = server.URL
	t.Cleanup(func() { apiUrl = old })
}

func Test_Open(t *testing.T) {
	t.Run("filters by label substring", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repos/acme/books/issues" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("state") != "open" {
				t.Errorf("unexpected state %s", r.URL.Query().Get("state"))
			}
			_, _ = w.Write([]byte(issueListing))
		})

		list, err := Open("acme", "books", "part-")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 matching issues, got %d", len(list))
		}
		if list[0].Number != 101 || list[1].Number != 103 {
			t.Error("wrong issues matched")
		}
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(issueListing))
		})

		list, err := Open("acme", "books", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 3 {
			t.Fatalf("expected all 3 issues, got %d", len(list))
		}
	})

	t.Run("tracker failure becomes an access error", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := Open("acme", "books", "part-")
		accessErr := &AccessError{}
		if !errors.As(err, &accessErr) {
			t.Fatalf("expected AccessError, got %v", err)
		}
	})
}

func Test_Lookup(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != "all" {
			t.Errorf("unexpected state %s", r.URL.Query().Get("state"))
		}
		_, _ = w.Write([]byte(issueListing))
	})

	list, err := All("acme", "books")
	if err != nil {
		t.Fatal(err)
	}

	if issue := Lookup(list, 102); issue == nil || issue.Title != "Read SICP" {
		t.Error("expected to find issue 102")
	}
	if issue := Lookup(list, 999); issue != nil {
		t.Error("expected no match for unknown number")
	}
}
