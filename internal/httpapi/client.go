package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/transport"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
	"github.com/BrandonDHaskell/permwatch/internal/wire"
)

// Client talks to a permwatch server over HTTP. It satisfies
// transport.Sink, so a page-side Transport can deliver through it.
type Client struct {
	baseURL  string
	http     *http.Client
	protobuf bool
}

type ClientOption func(*Client)

// WithProtobuf switches request and response bodies to protobuf.
func WithProtobuf() ClientOption {
	return func(c *Client) { c.protobuf = true }
}

// WithHTTPClient replaces the default client, which times out after 10s.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("permwatch: http %d", e.StatusCode)
	}
	return fmt.Sprintf("permwatch: http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) Submit(ctx context.Context, ev types.UsageEvent) error {
	if c.protobuf {
		return c.doProto(ctx, http.MethodPost, "/v1/usage", wire.UsageEventToProto(ev), nil)
	}
	return c.doJSON(ctx, http.MethodPost, "/v1/usage", ev, nil)
}

func (c *Client) Fetch(ctx context.Context) ([]types.UsageRecord, error) {
	if c.protobuf {
		var l structpb.ListValue
		if err := c.doProto(ctx, http.MethodGet, "/v1/logs", nil, &l); err != nil {
			return nil, err
		}
		return wire.UsageRecordsFromProto(&l), nil
	}
	recs := []types.UsageRecord{}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/logs", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) Clear(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/logs", nil, nil)
}

func (c *Client) GetSettings(ctx context.Context) (types.Settings, error) {
	if c.protobuf {
		var s structpb.Struct
		if err := c.doProto(ctx, http.MethodGet, "/v1/settings", nil, &s); err != nil {
			return types.Settings{}, err
		}
		return wire.SettingsFromProto(&s), nil
	}
	var s types.Settings
	err := c.doJSON(ctx, http.MethodGet, "/v1/settings", nil, &s)
	return s, err
}

func (c *Client) UpdateSettings(ctx context.Context, s types.Settings) error {
	if c.protobuf {
		return c.doProto(ctx, http.MethodPut, "/v1/settings", wire.SettingsToProto(s), nil)
	}
	return c.doJSON(ctx, http.MethodPut, "/v1/settings", s, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doProto(ctx context.Context, method, path string, in, out proto.Message) error {
	var body io.Reader
	if in != nil {
		data, err := proto.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", wire.ContentType)
	}
	req.Header.Set("Accept", wire.ContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{StatusCode: resp.StatusCode}
	var er types.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRequestBody)).Decode(&er); err == nil {
		se.Code, se.Message = er.Error, er.Message
	}
	return se
}

var _ transport.Sink = (*Client)(nil)
