// Package assembler implements the aggregate assembler (C8, §4.7): the
// top-level process(request) -> SampledAggregate orchestrator wiring the
// decomposer, recovery channel, message buffer, correlator, time-domain
// processor and sampled-block builder.
package assembler

import (
	"context"
	"time"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/buffer"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/convert"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/correlate"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/decompose"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dppb"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/recovery"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/sampledblock"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/timedomain"
)

// Config tunes the assembler's buffer sizing and strictness.
type Config struct {
	// BufferCapacity is the message buffer's bounded queue size
	// (§4.3 "queue size limit comes from config").
	BufferCapacity int
	// StrictOrdering promotes OrderingViolation/DomainCollision to
	// fatal instead of the default fuse-and-continue (§7).
	StrictOrdering bool
	Recovery       recovery.Config
}

func (c Config) withDefaults() Config {
	if c.BufferCapacity == 0 {
		c.BufferCapacity = 256
	}
	return c
}

// Assembler is the top-level orchestrator (C8). One Assembler can run
// many sequential process() calls; each call gets its own buffer and
// correlator instance so concurrent calls on the same Assembler don't
// interfere (the correlator/builder are single-threaded per request,
// not globally, per §5).
type Assembler struct {
	channel *recovery.Channel
	cfg     Config
}

// New builds an Assembler driving transport through channel.
func New(channel *recovery.Channel, cfg Config) *Assembler {
	return &Assembler{channel: channel, cfg: cfg.withDefaults()}
}

// Result carries the performance/scoring fields emitted by one process()
// run alongside the aggregate itself (§4.8).
type Result struct {
	Aggregate         *model.SampledAggregate
	RequestID         string
	RecoveredMessages int
	RecoveredBytes    int64
	CorrelatedBlocks  int
	DurationRecovery  time.Duration
	DurationAssembly  time.Duration
	OrderingOK        bool
	DisjointOK        bool
}

// Process runs the full C2-C7 pipeline for req and returns the resulting
// SampledAggregate plus its performance record (§4.7).
func (a *Assembler) Process(ctx context.Context, req model.Request) (*Result, error) {
	started := time.Now()

	subs, err := decompose.Decompose(req)
	if err != nil {
		return nil, err
	}

	buf := buffer.New[*dppb.QueryDataResponse](a.cfg.BufferCapacity)
	if err := buf.Activate(); err != nil {
		return nil, err
	}
	corr := correlate.New()

	// Invariant violations detected by the consumer (correlator/builder
	// layer) must cancel the in-flight recovery rather than let every
	// peer sub-request stream run to completion (§7 "Invariant
	// violations inside the correlator or builder abort immediately and
	// cancel peers").
	recoveryCtx, cancelRecovery := context.WithCancel(ctx)
	defer cancelRecovery()

	typeBySource := make(map[string]model.ScalarType)
	recoveredMessages := 0
	var recoveredBytes int64
	var correlatorErr error

	failRecovery := func(err error) {
		if correlatorErr == nil {
			correlatorErr = err
			cancelRecovery()
		}
	}

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			resp, ok := buf.Poll()
			if !ok {
				return
			}
			recoveredMessages++
			if resp.ExceptionalResult != nil {
				failRecovery(convert.ExceptionalResultToError(resp.ExceptionalResult))
				continue
			}
			for _, wireBucket := range resp.Buckets {
				recoveredBytes += wireBucketSize(wireBucket)
				t, terr := inferScalarType(wireBucket)
				if terr != nil {
					failRecovery(terr)
					continue
				}
				typeBySource[wireBucket.SourceName] = t
				bucket, cerr := convert.BucketToDomain(wireBucket, t)
				if cerr != nil {
					failRecovery(cerr)
					continue
				}
				if aerr := corr.Add(bucket); aerr != nil {
					failRecovery(aerr)
				}
			}
		}
	}()

	producer := buffer.NewProducer(buf)
	recoveryStart := time.Now()
	recErr := a.channel.RecoverRequests(recoveryCtx, subs, producer)
	buf.Shutdown()
	<-consumerDone
	durationRecovery := time.Since(recoveryStart)

	if correlatorErr != nil {
		return nil, correlatorErr
	}

	partial := false
	var partialIntervals []model.TimeInterval
	if recErr != nil {
		if !req.Options.ToleratePartial {
			return nil, recErr
		}
		partial = true
		partialIntervals = failedSubIntervals(recErr, subs)
	}

	assemblyStart := time.Now()
	raw := corr.CorrelatedSet()

	orderingOK := timedomain.VerifyStartTimeOrdering(raw).OK
	disjointStatus := timedomain.VerifyDisjointTimeDomains(raw)
	if !disjointStatus.OK && a.cfg.StrictOrdering {
		return nil, dperrors.New(dperrors.KindDomainCollision, "overlapping time domains in strict mode")
	}

	finalSet := raw
	if !disjointStatus.OK {
		finalSet = fuseAndMerge(raw)
	}

	blocks := make([]*model.UniformSamplingBlock, 0, len(finalSet))
	for i, r := range finalSet {
		blocks = append(blocks, sampledblock.Build(r, int64(i)))
	}

	allSources := collectAllSources(blocks)
	sampledblock.UnifySourceSet(blocks, allSources, func(name string) model.ScalarType {
		if t, ok := typeBySource[name]; ok {
			return t
		}
		return model.ScalarUnspecified
	})

	aggregate := &model.SampledAggregate{Blocks: blocks, Partial: partial, PartialIntervals: partialIntervals}

	return &Result{
		Aggregate:         aggregate,
		RequestID:         req.ID,
		RecoveredMessages: recoveredMessages,
		RecoveredBytes:    recoveredBytes,
		CorrelatedBlocks:  len(finalSet),
		DurationRecovery:  durationRecovery,
		DurationAssembly:  time.Since(assemblyStart),
		OrderingOK:        orderingOK,
		DisjointOK:        disjointStatus.OK,
	}, nil
}

// fuseAndMerge runs the §4.5/§4.7-step-6 fusion: group overlapping raw
// blocks into super-domains and collapse each into a single merged
// RawCorrelatedData, producing a new sorted, disjoint set.
func fuseAndMerge(raw []model.RawCorrelatedData) []model.RawCorrelatedData {
	supers := timedomain.FuseSuperDomains(raw)
	out := make([]model.RawCorrelatedData, 0, len(supers))
	for i, sd := range supers {
		if len(sd.Members) == 1 {
			out = append(out, sd.Members[0])
			continue
		}
		out = append(out, timedomain.MergeSuperDomain(sd, i))
	}
	return out
}

func collectAllSources(blocks []*model.UniformSamplingBlock) []string {
	seen := make(map[string]bool)
	var names []string
	for _, blk := range blocks {
		for name := range blk.Series {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// failedSubIntervals returns the time ranges of sub-requests named in
// recErr's failures, for the partial-result marker (§4.7 "the aggregate
// is returned with a partial=true marker and the affected time
// intervals recorded").
func failedSubIntervals(recErr error, subs []model.SubRequest) []model.TimeInterval {
	var re *dperrors.RecoveryError
	if !asRecoveryError(recErr, &re) {
		return nil
	}
	byIndex := make(map[int]model.TimeInterval, len(subs))
	for _, s := range subs {
		byIndex[s.Index] = s.Range
	}
	var out []model.TimeInterval
	for _, f := range re.Failures {
		if iv, ok := byIndex[f.Index]; ok {
			out = append(out, iv)
		}
	}
	return out
}

func asRecoveryError(err error, out **dperrors.RecoveryError) bool {
	type unwrapper interface{ Unwrap() error }
	for e := err; e != nil; {
		if re, ok := e.(*dperrors.RecoveryError); ok {
			*out = re
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

func wireBucketSize(b *dppb.DataBucket) int64 {
	if b == nil || b.DataColumn == nil {
		return 0
	}
	var size int64
	for _, v := range b.DataColumn.Values {
		if v == nil {
			continue
		}
		size += 8 // approximate fixed-width cost; ImageValue counted below
		size += int64(len(v.ImageValue)) + int64(len(v.StringValue))
	}
	return size
}

// inferScalarType derives the domain ScalarType from the wire bucket's
// first present cell, since the externally-supplied schema doesn't
// repeat a bucket-level type tag (§4.9).
func inferScalarType(b *dppb.DataBucket) (model.ScalarType, error) {
	if b == nil || b.DataColumn == nil || len(b.DataColumn.Values) == 0 {
		return model.ScalarUnspecified, dperrors.Newf(dperrors.KindUnsupportedType, "bucket %q has no cells to infer a type from", safeSourceName(b))
	}
	for _, v := range b.DataColumn.Values {
		if v != nil && v.ValuePresent {
			t, err := convertScalarType(v.Type)
			if err != nil {
				return model.ScalarUnspecified, err
			}
			return t, nil
		}
	}
	return model.ScalarUnspecified, dperrors.Newf(dperrors.KindMissingResource, "bucket %q has no non-null cells to infer a type from", safeSourceName(b))
}

func safeSourceName(b *dppb.DataBucket) string {
	if b == nil {
		return ""
	}
	return b.SourceName
}

func convertScalarType(wireType int32) (model.ScalarType, error) {
	return convert.ScalarTypeToDomain(wireType)
}
