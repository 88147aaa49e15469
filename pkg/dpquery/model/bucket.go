package model

// DataBucket is a single source's raw time-series slice as returned by the
// Query service: a name, a scalar type, the values themselves, and the
// timestamp descriptor they're plotted against (§3).
type DataBucket struct {
	SourceName string
	DataType   ScalarType
	Values     []Scalar
	Timestamps TimestampDescriptor
}

// Domain is a convenience forward to the bucket's timestamp domain.
func (b DataBucket) Domain() TimeInterval {
	return b.Timestamps.Domain()
}
