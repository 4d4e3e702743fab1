package validation

import (
	"net/url"
	"regexp"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

var sortPattern = regexp.MustCompile(`^(created_at|updated_at|front|next_review_date):(asc|desc)$`)

// ListParams is the pagination common to every list endpoint.
type ListParams struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int { return (p.Page - 1) * p.Limit }

// FlashcardsListParams are the query parameters of GET /flashcards.
type FlashcardsListParams struct {
	ListParams
	Source    string
	SortField string
	SortDir   string
}

// SessionsListParams are the query parameters of GET /sessions.
type SessionsListParams struct {
	ListParams
	Status string
}

func parsePositiveInt(q url.Values, key string, def, max int, errs FieldErrors) int {
	raw := q.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[key] = "Must be an integer"
		return def
	}
	if n < 1 {
		errs[key] = "Must be at least 1"
		return def
	}
	if max > 0 && n > max {
		errs[key] = "Must not exceed " + strconv.Itoa(max)
		return def
	}
	return n
}

func parseListParams(q url.Values, errs FieldErrors) ListParams {
	return ListParams{
		Page:  parsePositiveInt(q, "page", defaultPage, 0, errs),
		Limit: parsePositiveInt(q, "limit", defaultLimit, maxLimit, errs),
	}
}

// ParseFlashcardsListParams validates page, limit, source and sort for the
// flashcard list endpoint.
func ParseFlashcardsListParams(q url.Values) (FlashcardsListParams, FieldErrors) {
	errs := FieldErrors{}
	params := FlashcardsListParams{
		ListParams: parseListParams(q, errs),
		SortField:  "created_at",
		SortDir:    "desc",
	}

	if source := q.Get("source"); source != "" {
		if source != "manual" && source != "ai_generated" {
			errs["source"] = `Must be either "ai_generated" or "manual"`
		} else {
			params.Source = source
		}
	}

	if sort := q.Get("sort"); sort != "" {
		m := sortPattern.FindStringSubmatch(sort)
		if m == nil {
			errs["sort"] = `Must be in format "field:direction" (e.g., "created_at:desc")`
		} else {
			params.SortField, params.SortDir = m[1], m[2]
		}
	}

	return params, errs
}

// ParseSessionsListParams validates page, limit and status for the
// generation session list endpoint.
func ParseSessionsListParams(q url.Values) (SessionsListParams, FieldErrors) {
	errs := FieldErrors{}
	params := SessionsListParams{ListParams: parseListParams(q, errs)}

	if status := q.Get("status"); status != "" {
		switch status {
		case "success", "failed", "partial":
			params.Status = status
		default:
			errs["status"] = `Must be "success", "failed", or "partial"`
		}
	}

	return params, errs
}

// ParseDueLimit validates the limit parameter of GET /flashcards/due.
func ParseDueLimit(q url.Values) (int, FieldErrors) {
	errs := FieldErrors{}
	limit := parsePositiveInt(q, "limit", defaultLimit, maxLimit, errs)
	return limit, errs
}
