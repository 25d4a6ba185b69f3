package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	json "github.com/json-iterator/go"
	"github.com/zfogg/inkwell/pkg/client"
	"github.com/zfogg/inkwell/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest checks a request payload's validate tags before it is sent
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// API wraps the REST endpoints of the blogging server
type API struct {
	c *client.Client
}

// New creates an API over c
func New(c *client.Client) *API {
	return &API{c: c}
}

// envelope is the {success, data} wrapper most routes respond with
type envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data"`
	Message     string          `json:"message"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Total       int             `json:"total"`
	Count       int             `json:"count"`
}

// Page describes a paginated listing
type Page struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
}

func (e *envelope) page() Page {
	return Page{CurrentPage: e.CurrentPage, TotalPages: e.TotalPages, Total: e.Total}
}

// raw sends a request and returns the successful body
func (a *API) raw(ctx context.Context, method, path string, body interface{}, query url.Values) ([]byte, error) {
	logger.Debug("API call", "method", method, "path", path)

	req := a.c.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// call sends a request to an enveloped route and decodes data into out
func (a *API) call(ctx context.Context, method, path string, body interface{}, query url.Values, out interface{}) (*envelope, error) {
	data, err := a.raw(ctx, method, path, body, query)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", path, err)
		}
	}
	return &env, nil
}

// bare sends a request to a route that answers without an envelope
func (a *API) bare(ctx context.Context, method, path string, body interface{}, query url.Values, out interface{}) error {
	data, err := a.raw(ctx, method, path, body, query)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func escape(id string) string {
	return url.PathEscape(id)
}
