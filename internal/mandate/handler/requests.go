package handler

import (
	"net/url"
	"strconv"
	"strings"

	"mandate/internal/mandate/lifecycle"
	"mandate/internal/mandate/models"
	dErrors "mandate/pkg/domain-errors"
)

// SubmitterRequest is the body of POST /api/public/mandates and of
// PUT /api/admin/mandates/{id}/submitter.
type SubmitterRequest struct {
	LastName     string            `json:"last_name"`
	FirstName    string            `json:"first_name"`
	Function     string            `json:"function"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Constituency string            `json:"constituency"`
	Extra        map[string]string `json:"extra"`

	// Parsed values (populated by Validate)
	parsed models.SubmitterData
}

// Validate validates and normalizes the submitter payload.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	data, err := lifecycle.ValidateSubmitter(models.SubmitterData{
		LastName:     r.LastName,
		FirstName:    r.FirstName,
		Function:     r.Function,
		Email:        r.Email,
		Phone:        r.Phone,
		Constituency: r.Constituency,
		Extra:        r.Extra,
	})
	if err != nil {
		return err
	}
	r.parsed = data
	return nil
}

// Submitter returns the validated submitter data.
func (r *SubmitterRequest) Submitter() models.SubmitterData {
	return r.parsed
}

// RejectRequest is the body of POST /api/admin/mandates/{id}/reject. The
// reason itself is checked by the lifecycle after the status guard.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// parseFilter reads status, search, limit and offset from the query string.
// status accepts a comma separated list.
func parseFilter(q url.Values) (models.Filter, error) {
	var f models.Filter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			st, ok := models.ParseStatus(strings.TrimSpace(token))
			if !ok {
				return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "unknown status: "+token)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	if len(f.Search) > 200 {
		return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "search must be 200 characters or less")
	}

	var err error
	if f.Limit, err = intParam(q, "limit"); err != nil {
		return models.Filter{}, err
	}
	if f.Offset, err = intParam(q, "offset"); err != nil {
		return models.Filter{}, err
	}
	f.Normalize()
	return f, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
