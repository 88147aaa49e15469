package model

// StreamType selects the gRPC-style call kind a sub-request recovers over
// (§4.2). Forward-only streaming is illegal for queries: every kind here
// supports replay/cursoring on the client side.
type StreamType int

const (
	StreamUnary StreamType = iota
	StreamServer
	StreamBidi
)

func (t StreamType) String() string {
	switch t {
	case StreamUnary:
		return "unary"
	case StreamServer:
		return "server-stream"
	case StreamBidi:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// Decomp selects how the decomposer splits a Request into sub-requests
// (§4.1).
type Decomp int

const (
	DecompNone Decomp = iota
	DecompHorizontal
	DecompVertical
	DecompGrid
)

func (d Decomp) String() string {
	switch d {
	case DecompNone:
		return "none"
	case DecompHorizontal:
		return "horizontal"
	case DecompVertical:
		return "vertical"
	case DecompGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// RequestOptions carries the decomposer/assembler tuning knobs that don't
// belong on the wire request itself.
type RequestOptions struct {
	// ToleratePartial allows the assembler to return a SampledAggregate
	// with Partial=true instead of failing outright when some
	// sub-interval of the range could not be recovered (§4.8).
	ToleratePartial bool
	// GridStreamsPerAxis bounds the per-axis stream count for
	// Decomp == DecompGrid; the decomposer's total stream count is the
	// square of this, bounded per §4.1.
	GridStreamsPerAxis int
}

// Request is the caller-facing logical query (§3): one or more sources
// over one time range, to be recovered via streamCount parallel
// sub-requests of the given decomposition and stream type.
type Request struct {
	ID             string
	Sources        []string
	Range          TimeInterval
	StreamType     StreamType
	Decomposition  Decomp
	StreamCount    int
	Options        RequestOptions
}

// SubRequest is one decomposed unit of a Request, carrying the original
// request id and its own sources/range slice plus a monotonically
// assigned index (§4.1 "Each sub-request inherits id, streamType and a
// monotonically-assigned sub-index").
type SubRequest struct {
	ParentID   string
	Index      int
	Sources    []string
	Range      TimeInterval
	StreamType StreamType
}
