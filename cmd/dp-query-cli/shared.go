package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/config"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/recovery"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/transport"
)

// Process exit codes (§6): 0 success, 1 configuration error, 2 recovery
// (transport) error, 3 assembly-invariant violation, 4 I/O error.
const (
	exitSuccess            = 0
	exitConfigError        = 1
	exitRecoveryError      = 2
	exitAssemblyViolation  = 3
	exitIOError            = 4
)

// exitCodeFor maps a returned error to a process exit code: a file-system
// error (*fs.PathError) anywhere in the chain is exitIOError, otherwise
// the dperrors.Kind decides, falling back to exitRecoveryError for
// anything not otherwise classified since most command failures
// originate in the transport.
func exitCodeFor(err error) int {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return exitIOError
	}
	var de *dperrors.Error
	if !errorsAsDp(err, &de) {
		return exitRecoveryError
	}
	switch de.Kind {
	case dperrors.KindConfigError, dperrors.KindInvalidRequest:
		return exitConfigError
	case dperrors.KindOrderingViolation, dperrors.KindDomainCollision,
		dperrors.KindInconsistentColumnSize, dperrors.KindDuplicateSource,
		dperrors.KindMissingResource, dperrors.KindUnsupportedType:
		return exitAssemblyViolation
	case dperrors.KindTransportTransient, dperrors.KindTransportFatal,
		dperrors.KindDeadline, dperrors.KindServerError, dperrors.KindCancelled,
		dperrors.KindBufferClosed:
		return exitRecoveryError
	default:
		return exitRecoveryError
	}
}

func errorsAsDp(err error, out **dperrors.Error) bool {
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

// dialChannel dials cfg.Transport.Endpoint and wraps it in a recovery
// channel honoring the configured retry/timeout/breaker tuning; the
// returned io.Closer is the underlying *grpc.ClientConn.
func dialChannel(cfg *config.Config) (*recovery.Channel, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(cfg.Transport.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, dperrors.Wrap(dperrors.KindTransportFatal, fmt.Sprintf("dialing %s", cfg.Transport.Endpoint), err)
	}
	breakerThreshold := uint32(cfg.Transport.BreakerFailThreshold)
	channel := recovery.New(transport.NewGRPCTransport(conn), recovery.Config{
		MaxConcurrentStreams: uint(cfg.Transport.MaxConcurrentStreams),
		CallTimeout:          cfg.Transport.CallTimeout,
		MaxRetries:           cfg.Transport.MaxRetries,
		BreakerSettings: gobreaker.Settings{
			Name:        "dp-query-cli",
			MaxRequests: 1,
			Timeout:     cfg.Transport.CallTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= breakerThreshold },
		},
	})
	return channel, conn, nil
}

// persistOutput writes body to "<toolName>-<RFC3339-ish timestamp>.txt"
// in the current directory, in addition to whatever the caller already
// printed to stdout, so a replay run leaves a durable artifact behind.
func persistOutput(toolName, body string) (string, error) {
	name := fmt.Sprintf("%s-%s.txt", toolName, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(".", name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", dperrors.Wrap(dperrors.KindConfigError, "writing output file", err)
	}
	return path, nil
}
