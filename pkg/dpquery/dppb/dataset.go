package dppb

import "fmt"

// DataBlock names a rectangle of the dataset space: a set of sources
// crossed with a closed time range (§3 "DataBlock (for dataset
// requests)"). Out of scope for this library's query-recovery path
// (Non-goals: "the annotation (dataset) service"), but carried because
// it's part of the externally-supplied wire schema the transport must
// still decode.
type DataBlock struct {
	Sources   []string
	BeginTime *Timestamp
	EndTime   *Timestamp
}

func (m *DataBlock) Reset() { *m = DataBlock{} }
func (m *DataBlock) String() string {
	return fmt.Sprintf("DataBlock{sources=%d}", len(m.Sources))
}
func (*DataBlock) ProtoMessage() {}

// DataSet names a collection of DataBlocks under a dataset identifier.
type DataSet struct {
	Id     string
	Name   string
	Blocks []*DataBlock
}

func (m *DataSet) Reset()         { *m = DataSet{} }
func (m *DataSet) String() string { return fmt.Sprintf("DataSet{id=%s, name=%s}", m.Id, m.Name) }
func (*DataSet) ProtoMessage()    {}

// CreateDataSetRequest/Response and QueryDataSetsRequest are carried
// unchanged for wire compatibility; this library never issues them
// itself (Non-goals).
type CreateDataSetRequest struct {
	DataSet *DataSet
}

func (m *CreateDataSetRequest) Reset()         { *m = CreateDataSetRequest{} }
func (m *CreateDataSetRequest) String() string { return "CreateDataSetRequest{}" }
func (*CreateDataSetRequest) ProtoMessage()    {}

type CreateDataSetResponse struct {
	Id                string
	ExceptionalResult *ExceptionalResult
}

func (m *CreateDataSetResponse) Reset()         { *m = CreateDataSetResponse{} }
func (m *CreateDataSetResponse) String() string { return fmt.Sprintf("CreateDataSetResponse{id=%s}", m.Id) }
func (*CreateDataSetResponse) ProtoMessage()    {}

type QueryDataSetsRequest struct {
	IdPattern string
}

func (m *QueryDataSetsRequest) Reset()         { *m = QueryDataSetsRequest{} }
func (m *QueryDataSetsRequest) String() string { return fmt.Sprintf("QueryDataSetsRequest{pattern=%s}", m.IdPattern) }
func (*QueryDataSetsRequest) ProtoMessage()    {}
