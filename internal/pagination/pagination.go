// Package pagination computes page windows for listings.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidPage = errors.New("invalid page")

// Info contains pagination metadata.
type Info struct {
	Total      int `json:"total"`
	PerPage    int `json:"per_page"`
	Current    int `json:"current"`
	Offset     int `json:"-"`
	TotalPages int `json:"total_pages"`
}

// New builds pagination info for page current (1-based). A listing with no
// items still has one, empty, page.
func New(total, perPage, current int) *Info {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	return &Info{
		Total:      total,
		PerPage:    perPage,
		Current:    current,
		Offset:     (current - 1) * perPage,
		TotalPages: totalPages,
	}
}

// LimitOffset returns LIMIT and OFFSET for SQL queries.
func (p *Info) LimitOffset() (limit int, offset int) {
	return p.PerPage, p.Offset
}

func (p *Info) HasNext() bool {
	return p.Current < p.TotalPages
}

func (p *Info) HasPrev() bool {
	return p.Current > 1
}

// ParsePage reads a page query parameter. Empty means the first page and
// "last" is returned as LastPage for the caller to resolve once the total is
// known. Anything else must be a positive integer.
func ParsePage(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return 1, nil
	case "last":
		return LastPage, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrInvalidPage
	}
	return n, nil
}

// LastPage stands for the final page of a listing.
const LastPage = -1

// Resolve turns a parsed page number into an Info. Pages past the end are
// reported as ErrInvalidPage, except for the first page of an empty listing.
func Resolve(total, perPage, page int) (*Info, error) {
	p := New(total, perPage, 1)
	if page == LastPage {
		page = p.TotalPages
	}
	if page > p.TotalPages {
		return nil, ErrInvalidPage
	}
	return New(total, perPage, page), nil
}
