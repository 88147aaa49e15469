package dppb

import "fmt"

// DataBucket is one source's typed samples plus their timestamp
// description, as carried on the wire (§3, §6).
type DataBucket struct {
	SourceName     string
	DataColumn     *DataColumn
	DataTimestamps *DataTimestamps
}

func (m *DataBucket) Reset() { *m = DataBucket{} }
func (m *DataBucket) String() string {
	return fmt.Sprintf("DataBucket{source=%s}", m.SourceName)
}
func (*DataBucket) ProtoMessage() {}

// ExceptionalResult is the error branch of a QueryDataResponse (§4.9: "An
// ExceptionalResult branch in any response produces ServerError{kind,
// message}").
type ExceptionalResult struct {
	ExceptionalResultStatus string
	Message                 string
}

func (m *ExceptionalResult) Reset() { *m = ExceptionalResult{} }
func (m *ExceptionalResult) String() string {
	return fmt.Sprintf("ExceptionalResult{status=%s}", m.ExceptionalResultStatus)
}
func (*ExceptionalResult) ProtoMessage() {}

// QueryDataResponse is one inbound response message (§3 "inbound data
// consists of response messages each carrying one or more data
// buckets"): either a batch of buckets, or an ExceptionalResult.
type QueryDataResponse struct {
	Buckets           []*DataBucket
	ExceptionalResult *ExceptionalResult
}

func (m *QueryDataResponse) Reset() { *m = QueryDataResponse{} }
func (m *QueryDataResponse) String() string {
	if m.ExceptionalResult != nil {
		return m.ExceptionalResult.String()
	}
	return fmt.Sprintf("QueryDataResponse{buckets=%d}", len(m.Buckets))
}
func (*QueryDataResponse) ProtoMessage() {}
