// Package recovery implements the recovery channel (C3, §4.2): drives
// one gRPC-style transport call per sub-request in parallel, hands every
// received message to the shared buffer, and aggregates per-sub-request
// failures into a single RecoveryError.
package recovery

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gogo/status"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"github.com/osprey-dcs/dp-query-go/pkg/boundedwaitgroup"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dppb"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

// Transport is the capability interface a recovery channel drives. A
// concrete implementation adapts a *grpc.ClientConn (transport.GRPCTransport)
// or a test double.
type Transport interface {
	Unary(ctx context.Context, sub model.SubRequest) (*dppb.QueryDataResponse, error)
	ServerStream(ctx context.Context, sub model.SubRequest) (dppb.QueryDataStreamClient, error)
	// BidiStream takes no sub: the bidirectional shape opens a bare
	// stream and the caller (callBidiStream) sends the initial request
	// as the first message, symmetric with how it sends subsequent
	// acks/cursors on the same stream (§4.2 "bidirectional: symmetric
	// streaming").
	BidiStream(ctx context.Context) (dppb.QueryDataBidiStreamClient, error)
}

// Producer is the handle the channel uses to hand received messages to
// the shared buffer (§4.2 "hands every received message to the shared
// buffer via a producer handle"). The buffer package's MessageBuffer
// satisfies this via a thin adapter (see buffer.NewProducer).
type Producer interface {
	Offer(*dppb.QueryDataResponse) error
}

// ProducerFunc adapts a plain function to Producer.
type ProducerFunc func(*dppb.QueryDataResponse) error

func (f ProducerFunc) Offer(r *dppb.QueryDataResponse) error { return f(r) }

// Config tunes the channel's retry, timeout and concurrency-bound
// policy. Zero-value fields fall back to the package defaults applied
// by New.
type Config struct {
	// MaxConcurrentStreams bounds how many sub-request streams run at
	// once (boundedwaitgroup capacity).
	MaxConcurrentStreams uint
	// CallTimeout bounds a single transport call; its expiry surfaces
	// as Deadline (§7).
	CallTimeout time.Duration
	// MaxRetries bounds per-sub-request retry attempts on a transient
	// transport error (§7 "Per-sub-request retry up to N").
	MaxRetries int
	// BreakerSettings configures the circuit breaker shared by every
	// sub-request of the channel. While it is open, calls fail fast and
	// are classified as TransportTransient (so they count against
	// MaxRetries); fatal classification comes from classifyTransportErr,
	// not from the breaker.
	BreakerSettings gobreaker.Settings
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentStreams == 0 {
		c.MaxConcurrentStreams = 8
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.BreakerSettings.Name == "" {
		c.BreakerSettings = gobreaker.Settings{
			Name:        "dp-query-recovery",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 5 },
		}
	}
	return c
}

// Channel is the concrete recovery channel: one Transport, shared across
// every RecoverRequests call, plus the tuning Config.
type Channel struct {
	transport Transport
	cfg       Config
	breaker   *gobreaker.CircuitBreaker
}

// New builds a recovery channel over the given transport.
func New(transport Transport, cfg Config) *Channel {
	cfg = cfg.withDefaults()
	return &Channel{transport: transport, cfg: cfg, breaker: gobreaker.NewCircuitBreaker(cfg.BreakerSettings)}
}

// RecoverRequests drives one transport call per sub-request in
// parallel, feeding every received message to producer, and returns
// only once every sub-request has completed or failed (§4.2). It
// returns a *dperrors.Error wrapping a RecoveryError on any sub-request
// failure, or nil on full success. Cancelling ctx aborts all in-flight
// streams; RecoverRequests itself never shuts the buffer down — that is
// the caller's responsibility once it returns (§4.7 step 3).
func (c *Channel) RecoverRequests(ctx context.Context, subs []model.SubRequest, producer Producer) error {
	group, groupCtx := errgroup.WithContext(ctx)
	bwg := boundedwaitgroup.New(c.cfg.MaxConcurrentStreams)

	failures := make([]dperrors.SubFailure, len(subs))
	hasFailure := make([]bool, len(subs))

	for _, sub := range subs {
		sub := sub
		bwg.Add(1)
		group.Go(func() error {
			defer bwg.Done()
			err := c.recoverOne(groupCtx, sub, producer)
			if err == nil {
				return nil
			}
			kind := dperrors.KindTransportTransient
			var de *dperrors.Error
			if ok := asDpError(err, &de); ok {
				kind = de.Kind
			}
			failures[sub.Index] = dperrors.SubFailure{Index: sub.Index, Kind: kind, Message: err.Error()}
			hasFailure[sub.Index] = true
			if isFatal(kind) {
				// Early fatal errors cancel all peer sub-requests
				// (§4.2); returning a non-nil error from an
				// errgroup.Group cancels groupCtx for the others.
				return err
			}
			return nil
		})
	}

	// group.Wait does not itself bound concurrency; bwg does. Both
	// must be waited on: bwg guarantees every goroutine has been
	// scheduled and released its slot, group.Wait guarantees every
	// goroutine has returned (§5 "All tasks join before process
	// returns").
	waitErr := group.Wait()
	bwg.Wait()

	var collected []dperrors.SubFailure
	for i, has := range hasFailure {
		if has {
			collected = append(collected, failures[i])
		}
	}
	if len(collected) == 0 {
		return nil
	}
	recErr := &dperrors.RecoveryError{Failures: collected}
	if waitErr != nil && !recErr.Fatal() {
		// a fatal error cancelled the group but wasn't attributed to
		// any sub-request's own outcome (e.g. the cancellation raced
		// a peer's own completion) — still surface it as fatal.
		recErr.Failures = append(recErr.Failures, dperrors.SubFailure{Index: -1, Kind: dperrors.KindTransportFatal, Message: waitErr.Error()})
	}
	return recErr.ToError()
}

func isFatal(kind dperrors.Kind) bool {
	switch kind {
	case dperrors.KindTransportFatal, dperrors.KindServerError, dperrors.KindDuplicateSource,
		dperrors.KindMissingResource, dperrors.KindInconsistentColumnSize, dperrors.KindUnsupportedType:
		return true
	default:
		return false
	}
}

func asDpError(err error, out **dperrors.Error) bool {
	type unwrapper interface{ Unwrap() error }
	for e := err; e != nil; {
		if de, ok := e.(*dperrors.Error); ok {
			*out = de
			return true
		}
		u, ok := e.(unwrapper)
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

// recoverOne drives the single transport call appropriate to sub's
// StreamType, retrying transient failures (TransportTransient and
// Deadline) up to Config.MaxRetries (§4.2, §7); any other failure is
// returned at once.
func (c *Channel) recoverOne(ctx context.Context, sub model.SubRequest, producer Producer) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return dperrors.Wrap(dperrors.KindCancelled, "sub-request cancelled", ctx.Err())
		}
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		err := c.dispatch(callCtx, sub, producer)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		var de *dperrors.Error
		if asDpError(err, &de) && de.Kind != dperrors.KindTransportTransient && de.Kind != dperrors.KindDeadline {
			return err
		}
		if ctx.Err() != nil {
			return dperrors.Wrap(dperrors.KindCancelled, "sub-request cancelled", ctx.Err())
		}
	}
	return lastErr
}

func (c *Channel) dispatch(ctx context.Context, sub model.SubRequest, producer Producer) error {
	result, breakerErr := c.breaker.Execute(func() (any, error) {
		switch sub.StreamType {
		case model.StreamUnary:
			return nil, c.callUnary(ctx, sub, producer)
		case model.StreamServer:
			return nil, c.callServerStream(ctx, sub, producer)
		case model.StreamBidi:
			return nil, c.callBidiStream(ctx, sub, producer)
		default:
			return nil, dperrors.Newf(dperrors.KindInvalidRequest, "unknown stream type %v", sub.StreamType)
		}
	})
	_ = result
	return classifyTransportErr(breakerErr)
}

// classifyTransportErr assigns a dperrors.Kind to a raw transport error,
// consulting the gRPC status code when the server returned one so a
// permission/argument problem surfaces as fatal rather than retried as
// transient (§7 "TransportError(Fatal): cancel peers; surface").
func classifyTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return dperrors.Wrap(dperrors.KindTransportTransient, "circuit breaker open", err)
	}
	var de *dperrors.Error
	if asDpError(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dperrors.Wrap(dperrors.KindDeadline, "call timeout", err)
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			return dperrors.Wrap(dperrors.KindDeadline, "call timeout", err)
		case codes.Canceled:
			return dperrors.Wrap(dperrors.KindCancelled, "call cancelled", err)
		case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
			return dperrors.Wrap(dperrors.KindTransportTransient, "transport error", err)
		case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated, codes.Unimplemented:
			return dperrors.Wrap(dperrors.KindTransportFatal, "transport error", err)
		default:
			return dperrors.Wrap(dperrors.KindServerError, "server error", err)
		}
	}
	return dperrors.Wrap(dperrors.KindTransportTransient, "transport error", err)
}

func (c *Channel) callUnary(ctx context.Context, sub model.SubRequest, producer Producer) error {
	resp, err := c.transport.Unary(ctx, sub)
	if err != nil {
		return err
	}
	return producer.Offer(resp)
}

func (c *Channel) callServerStream(ctx context.Context, sub model.SubRequest, producer Producer) error {
	stream, err := c.transport.ServerStream(ctx, sub)
	if err != nil {
		return err
	}
	for {
		resp, err := stream.Recv()
		if err != nil {
			if isEOF(err) {
				return nil
			}
			return err
		}
		if err := producer.Offer(resp); err != nil {
			return err
		}
	}
}

func (c *Channel) callBidiStream(ctx context.Context, sub model.SubRequest, producer Producer) error {
	stream, err := c.transport.BidiStream(ctx)
	if err != nil {
		return err
	}
	if err := stream.Send(&dppb.QueryDataRequest{
		Sources:   sub.Sources,
		BeginTime: toWireTime(sub.Range.Begin),
		EndTime:   toWireTime(sub.Range.End),
	}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		resp, err := stream.Recv()
		if err != nil {
			if isEOF(err) {
				return nil
			}
			return err
		}
		if err := producer.Offer(resp); err != nil {
			return err
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

func toWireTime(t time.Time) *dppb.Timestamp {
	return &dppb.Timestamp{EpochSeconds: t.Unix(), NanoSeconds: int64(t.Nanosecond())}
}
