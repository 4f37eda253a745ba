package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/permwatch/internal/permwatch/transport"
	"github.com/BrandonDHaskell/permwatch/internal/permwatch/types"
	"github.com/BrandonDHaskell/permwatch/internal/wire"
)

const defaultCallTimeout = 5 * time.Second

// Client calls permwatch.v1.UsageLog. It satisfies transport.Sink.
type Client struct {
	conn    grpc.ClientConnInterface
	closer  func() error
	timeout time.Duration
}

// Dial connects to addr without TLS; the server is expected to listen on a
// loopback or otherwise trusted interface.
func Dial(addr string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to usage log: %w", err)
	}
	c := NewClient(conn, timeout)
	c.closer = conn.Close
	return c, nil
}

// NewClient wraps an existing connection. Close does not close conn.
func NewClient(conn grpc.ClientConnInterface, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{conn: conn, timeout: timeout}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) Submit(ctx context.Context, ev types.UsageEvent) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, methodSubmit, wire.UsageEventToProto(ev), new(emptypb.Empty))
}

func (c *Client) Fetch(ctx context.Context) ([]types.UsageRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, methodFetch, new(emptypb.Empty), out); err != nil {
		return nil, err
	}
	return wire.UsageRecordsFromProto(out), nil
}

func (c *Client) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, methodClear, new(emptypb.Empty), new(emptypb.Empty))
}

func (c *Client) GetSettings(ctx context.Context) (types.Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodGetSettings, new(emptypb.Empty), out); err != nil {
		return types.Settings{}, err
	}
	return wire.SettingsFromProto(out), nil
}

func (c *Client) UpdateSettings(ctx context.Context, s types.Settings) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, methodUpdateSettings, wire.SettingsToProto(s), new(structpb.Struct))
}

var _ transport.Sink = (*Client)(nil)
