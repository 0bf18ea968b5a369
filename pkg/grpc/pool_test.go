package grpc

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/metadata"
)

func TestGetConnectionReusesTarget(t *testing.T) {
	p := NewPool()
	defer p.Close()

	a, err := p.GetConnection("passthrough:///ledger-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.GetConnection("passthrough:///ledger-a")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("same target should reuse the connection")
	}
	c, err := p.GetConnection("passthrough:///ledger-b")
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("different targets should not share a connection")
	}
}

func TestGetConnectionReplacesShutdown(t *testing.T) {
	p := NewPool()
	defer p.Close()

	a, err := p.GetConnection("passthrough:///ledger")
	if err != nil {
		t.Fatal(err)
	}
	_ = a.Close()
	if a.GetState() != connectivity.Shutdown {
		t.Fatalf("state=%v want Shutdown", a.GetState())
	}
	b, err := p.GetConnection("passthrough:///ledger")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("closed connection should be replaced")
	}
}

func TestCloseEmptiesPool(t *testing.T) {
	p := NewPool()
	a, err := p.GetConnection("passthrough:///ledger")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if a.GetState() != connectivity.Shutdown {
		t.Fatalf("state=%v want Shutdown", a.GetState())
	}
	if _, ok := p.load("passthrough:///ledger"); ok {
		t.Fatal("pool should be empty after Close")
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor("x-request-id")

	var got []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get("x-request-id")
		return nil
	}

	if err := interceptor(context.Background(), "/m", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("want one request id, got %v", got)
	}
	if _, err := uuid.Parse(got[0]); err != nil {
		t.Fatalf("request id should be a uuid: %v", err)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "fixed")
	if err := interceptor(ctx, "/m", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "fixed" {
		t.Fatalf("existing request id should be kept, got %v", got)
	}
}
