// Package client is a Go client for the scheduling HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kilianp07/procsched/api/scheduling"
	"github.com/kilianp07/procsched/auth"
	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/store"
)

// Client calls a remote scheduling API.
type Client struct {
	base string
	http *http.Client
}

// New returns a Client for the server at baseURL authenticating with conf.
func New(ctx context.Context, baseURL string, conf auth.Conf) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/") + "/api/scheduling", http: conf.HTTPClient(ctx)}
}

// Error is a non-2xx answer of the server.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		var eb struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return &Error{Status: resp.StatusCode, Detail: eb.Detail}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Optimize runs the optimizer on the server.
func (c *Client) Optimize(ctx context.Context, req scheduling.OptimizeRequest) (scheduling.OptimizeResponse, error) {
	var out scheduling.OptimizeResponse
	err := c.do(ctx, http.MethodPost, "/optimize", req, &out)
	return out, err
}

// Appointments lists appointments matching f.
func (c *Client) Appointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	q := url.Values{}
	if f.PatientID != 0 {
		q.Set("patient_id", strconv.FormatInt(f.PatientID, 10))
	}
	if f.ResourceID != 0 {
		q.Set("resource_id", strconv.FormatInt(f.ResourceID, 10))
	}
	if !f.StartDate.IsZero() {
		q.Set("start_date", f.StartDate.Format("2006-01-02"))
	}
	if !f.EndDate.IsZero() {
		q.Set("end_date", f.EndDate.Format("2006-01-02"))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Offset > 0 {
		q.Set("skip", strconv.Itoa(f.Offset))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	path := "/appointments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []model.Appointment
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Cancel cancels an appointment.
func (c *Client) Cancel(ctx context.Context, id int64) (model.Appointment, error) {
	var out model.Appointment
	err := c.do(ctx, http.MethodPut, "/appointments/"+strconv.FormatInt(id, 10)+"/cancel", nil, &out)
	return out, err
}
