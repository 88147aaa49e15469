package dppb

import "context"

// QueryDataStreamClient is the receive half of a server-streaming
// QueryData call, mirroring the method set grpc-go generates for a
// `stream QueryDataResponse` RPC.
type QueryDataStreamClient interface {
	Recv() (*QueryDataResponse, error)
	CloseSend() error
}

// QueryDataBidiStreamClient is the send+receive half of a bidirectional
// QueryData call (§4.2 "bidirectional: symmetric streaming; the client
// sends the request and acks/cursors, the server streams messages").
type QueryDataBidiStreamClient interface {
	Send(*QueryDataRequest) error
	Recv() (*QueryDataResponse, error)
	CloseSend() error
}

// QueryServiceClient is the minimal subset of the generated Query service
// client this library depends on: one method per stream type named in
// §4.2.
type QueryServiceClient interface {
	QueryDataUnary(ctx context.Context, req *QueryDataRequest) (*QueryDataResponse, error)
	QueryDataStream(ctx context.Context, req *QueryDataRequest) (QueryDataStreamClient, error)
	QueryDataBidiStream(ctx context.Context) (QueryDataBidiStreamClient, error)
}
