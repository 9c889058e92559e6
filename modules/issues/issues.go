// Package issues reads poll candidates from the GitHub issue tracker.
// Every failure is wrapped into AccessError so callers can tell an
// unreachable tracker apart from their own persistence problems.
package issues

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/logger"
)

var apiUrl = "https://api.github.com"

var client = &http.Client{
	Timeout: time.Second * 30,
}

type Issue struct {
	Number  int64   `json:"number"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	State   string  `json:"state"`
	HtmlUrl string  `json:"html_url"`
	Labels  []Label `json:"labels"`
	User    Author  `json:"user"`
}

type Label struct {
	Name string `json:"name"`
}

type Author struct {
	Login string `json:"login"`
}

// HasLabel reports whether any label name contains the query. An empty
// query matches everything, so groups without a filter see all issues.
func (i *Issue) HasLabel(query string) bool {
	if query == "" {
		return true
	}
	for _, l := range i.Labels {
		if strings.Contains(l.Name, query) {
			return true
		}
	}
	return false
}

type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return "issue access failed during " + e.Op + ": " + e.Err.Error()
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Open returns the currently open issues whose labels match the query.
func Open(organization, repository, label string) ([]Issue, error) {
	list, err := fetch(organization, repository, "open")
	if err != nil {
		return nil, err
	}

	matched := make([]Issue, 0, len(list))
	for _, v := range list {
		if v.HasLabel(label) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// All returns every issue regardless of state, used to resolve books
// back to their display payloads after polls close.
func All(organization, repository string) ([]Issue, error) {
	return fetch(organization, repository, "all")
}

// Lookup finds an issue by number in an already-fetched list.
func Lookup(list []Issue, number int64) *Issue {
	for i := range list {
		if list[i].Number == number {
			return &list[i]
		}
	}
	return nil
}

func fetch(organization, repository, state string) ([]Issue, error) {
	requestUrl := fmt.Sprintf("%s/repos/%s/%s/issues?state=%s&per_page=100",
		apiUrl, organization, repository, state)
	logger.Debug().Printf("GET %s", requestUrl)

	req, err := http.NewRequest(http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, &AccessError{Op: "list " + state, Err: err}
	}
	if token := env.Get("github.token"); token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, &AccessError{Op: "list " + state, Err: err}
	}
	defer func() {
		if response.Body != nil {
			_ = response.Body.Close()
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, &AccessError{Op: "list " + state, Err: fmt.Errorf("unexpected status %d", response.StatusCode)}
	}

	var list []Issue
	if err = json.NewDecoder(response.Body).Decode(&list); err != nil {
		return nil, &AccessError{Op: "list " + state, Err: err}
	}
	return list, nil
}
