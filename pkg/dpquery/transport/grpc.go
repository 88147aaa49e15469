// Package transport adapts a google.golang.org/grpc client connection to
// the recovery.Transport interface, registering a client-side codec for
// this module's hand-authored wire types.
package transport

import (
	"context"

	"google.golang.org/grpc"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/convert"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dppb"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

const (
	serviceName           = "/dp.query.v1.QueryService/"
	methodQueryDataUnary  = serviceName + "QueryDataUnary"
	methodQueryDataServer = serviceName + "QueryDataStream"
	methodQueryDataBidi   = serviceName + "QueryDataBidiStream"
)

// GRPCTransport implements recovery.Transport over a real *grpc.ClientConn.
type GRPCTransport struct {
	conn *grpc.ClientConn
}

// NewGRPCTransport wraps an already-dialed connection.
func NewGRPCTransport(conn *grpc.ClientConn) *GRPCTransport {
	return &GRPCTransport{conn: conn}
}

func subToWireRequest(sub model.SubRequest) *dppb.QueryDataRequest {
	return &dppb.QueryDataRequest{
		Sources:   sub.Sources,
		BeginTime: convert.TimestampToWire(sub.Range.Begin),
		EndTime:   convert.TimestampToWire(sub.Range.End),
	}
}

func callOpts() []grpc.CallOption {
	return []grpc.CallOption{grpc.CallContentSubtype(codecName)}
}

// Unary issues a single QueryDataUnary call.
func (t *GRPCTransport) Unary(ctx context.Context, sub model.SubRequest) (*dppb.QueryDataResponse, error) {
	resp := &dppb.QueryDataResponse{}
	if err := t.conn.Invoke(ctx, methodQueryDataUnary, subToWireRequest(sub), resp, callOpts()...); err != nil {
		return nil, dperrors.Wrap(dperrors.KindTransportTransient, "grpc unary call", err)
	}
	return resp, nil
}

// ServerStream opens a QueryDataStream server-streaming call and sends
// the single request message the server-streaming RPC shape expects.
func (t *GRPCTransport) ServerStream(ctx context.Context, sub model.SubRequest) (dppb.QueryDataStreamClient, error) {
	desc := &grpc.StreamDesc{StreamName: "QueryDataStream", ServerStreams: true}
	stream, err := t.conn.NewStream(ctx, desc, methodQueryDataServer, callOpts()...)
	if err != nil {
		return nil, dperrors.Wrap(dperrors.KindTransportTransient, "opening grpc server stream", err)
	}
	if err := stream.SendMsg(subToWireRequest(sub)); err != nil {
		return nil, dperrors.Wrap(dperrors.KindTransportTransient, "sending server-stream request", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, dperrors.Wrap(dperrors.KindTransportTransient, "closing server-stream send side", err)
	}
	return &serverStreamClient{stream: stream}, nil
}

// BidiStream opens a bare QueryDataBidiStream bidirectional call; the
// caller sends the initial request and any subsequent acks/cursors
// itself (the interface takes no sub, mirroring the symmetric
// streaming shape of §4.2).
func (t *GRPCTransport) BidiStream(ctx context.Context) (dppb.QueryDataBidiStreamClient, error) {
	desc := &grpc.StreamDesc{StreamName: "QueryDataBidiStream", ServerStreams: true, ClientStreams: true}
	stream, err := t.conn.NewStream(ctx, desc, methodQueryDataBidi, callOpts()...)
	if err != nil {
		return nil, dperrors.Wrap(dperrors.KindTransportTransient, "opening grpc bidi stream", err)
	}
	return &bidiStreamClient{stream: stream}, nil
}

type serverStreamClient struct {
	stream grpc.ClientStream
}

func (c *serverStreamClient) Recv() (*dppb.QueryDataResponse, error) {
	resp := &dppb.QueryDataResponse{}
	if err := c.stream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *serverStreamClient) CloseSend() error { return c.stream.CloseSend() }

type bidiStreamClient struct {
	stream grpc.ClientStream
}

func (c *bidiStreamClient) Send(req *dppb.QueryDataRequest) error { return c.stream.SendMsg(req) }

func (c *bidiStreamClient) Recv() (*dppb.QueryDataResponse, error) {
	resp := &dppb.QueryDataResponse{}
	if err := c.stream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *bidiStreamClient) CloseSend() error { return c.stream.CloseSend() }
