package stock

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var catalogUrl = "https://www.googleapis.com/books/v1"

var client = &http.Client{
	Timeout: time.Second * 30,
}

// ErrCatalogMiss means the catalog answered but knows no such ISBN.
var ErrCatalogMiss = errors.New("no catalog entry for ISBN")

// CatalogError marks the catalog itself as unreachable, as opposed to
// a clean miss or a local persistence problem.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return "catalog access failed: " + e.Err.Error()
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

type CatalogBook struct {
	Title     string
	Author    string
	Publisher string
	Thumbnail string
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			Publisher  string   `json:"publisher"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup resolves an ISBN-13 to its catalog record.
func Lookup(isbn string) (*CatalogBook, error) {
	requestUrl := fmt.Sprintf("%s/volumes?q=isbn:%s", catalogUrl, isbn)

	response, err := client.Get(requestUrl)
	if err != nil {
		return nil, &CatalogError{Err: err}
	}
	defer func() {
		if response.Body != nil {
			_ = response.Body.Close()
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, &CatalogError{Err: fmt.Errorf("unexpected status %d", response.StatusCode)}
	}

	data := &volumesResponse{}
	if err = json.NewDecoder(response.Body).Decode(data); err != nil {
		return nil, &CatalogError{Err: err}
	}

	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, ErrCatalogMiss
	}

	info := data.Items[0].VolumeInfo
	return &CatalogBook{
		Title:     info.Title,
		Author:    strings.Join(info.Authors, ", "),
		Publisher: info.Publisher,
		Thumbnail: info.ImageLinks.Thumbnail,
	}, nil
}
