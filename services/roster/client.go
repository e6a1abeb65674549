// Package rostersvc fetches the demo student roster from the remote job-listing API.
package rostersvc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/klu2500030136/lptd-app/core/seed"
)

type Client struct {
	url string
}

var _ seed.RosterSource = (*Client)(nil) // interface compliance check

func NewClient(url string) *Client {
	return &Client{url: url}
}

type rosterResponse struct {
	Students []seed.RemoteStudent `json:"students"`
}

// FetchStudents GETs the roster. Non-2xx statuses and malformed bodies are errors.
func (c *Client) FetchStudents(ctx context.Context) ([]seed.RemoteStudent, error) {
	req := rest.Request{
		Method:  rest.Get,
		BaseURL: c.url,
		Headers: map[string]string{"Accept": "application/json"},
	}
	hreq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrap(err, "building roster request")
	}
	hres, err := rest.MakeRequest(hreq.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "requesting roster")
	}
	defer func() { _ = hres.Body.Close() }()

	resp, err := rest.BuildResponse(hres)
	if err != nil {
		return nil, errors.Wrap(err, "reading roster response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("roster responded with status %d", resp.StatusCode)
	}

	var body rosterResponse
	if err = json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return nil, errors.Wrap(err, "decoding roster")
	}
	return body.Students, nil
}
