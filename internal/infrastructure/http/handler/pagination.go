package handler

import (
	"net/http"
	"strconv"

	"github.com/rezkam/taskboard/internal/domain"
)

// Pagination is the metadata attached to paginated responses.
type Pagination struct {
	CurrentPage  int       `json:"current_page"`
	PerPage      int       `json:"per_page"`
	Total        int       `json:"total"`
	LastPage     int       `json:"last_page"`
	From         *int      `json:"from"`
	To           *int      `json:"to"`
	HasMorePages bool      `json:"has_more_pages"`
	Links        PageLinks `json:"links"`
}

// PageLinks are absolute URLs to neighbouring pages. Prev and Next are
// null at the edges.
type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PagedResource is the data of a paginated response.
type PagedResource struct {
	Items      []TaskResource `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

func newPagination(r *http.Request, p *domain.TaskPage) Pagination {
	last := p.LastPage()
	pg := Pagination{
		CurrentPage:  p.Page,
		PerPage:      p.PerPage,
		Total:        p.Total,
		LastPage:     last,
		HasMorePages: p.HasMorePages(),
		Links: PageLinks{
			First: pageURL(r, 1),
			Last:  pageURL(r, last),
		},
	}
	if from := p.From(); from > 0 {
		to := p.To()
		pg.From, pg.To = &from, &to
	}
	if p.Page > 1 {
		prev := pageURL(r, p.Page-1)
		pg.Links.Prev = &prev
	}
	if pg.HasMorePages {
		next := pageURL(r, p.Page+1)
		pg.Links.Next = &next
	}
	return pg
}

// pageURL rebuilds the request URL with page replaced.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))

	u := *r.URL
	u.Scheme = scheme
	u.Host = r.Host
	u.RawQuery = q.Encode()
	return u.String()
}
