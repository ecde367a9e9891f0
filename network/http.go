package network

import (
	"io"
	"net/http"
	"time"
)

// Http wraps the stdlib client so that callers can be tested without a live
// server. The status code is returned alongside the body because the signing
// service puts soft errors ("transaction does not exist") in non-200 bodies.
type Http interface {
	Do(req *http.Request) (int, []byte, error)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp(timeout time.Duration) Http {
	return &DefaultHttp{
		client: &http.Client{Timeout: timeout},
	}
}

func (d *DefaultHttp) Do(req *http.Request) (int, []byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)

	return resp.StatusCode, buf, err
}
