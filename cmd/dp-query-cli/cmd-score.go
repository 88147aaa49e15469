package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/assembler"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/scoring"
)

// requestSpec is the on-disk shape of one batch entry in a --requests
// file: a plain JSON mirror of model.Request, since Request itself
// carries no json tags (it is the library's in-memory type, not a wire
// format).
type requestSpec struct {
	ID      string   `json:"id"`
	Sources []string `json:"sources"`
	Begin   string   `json:"begin"`
	End     string   `json:"end"`
	Stream  string   `json:"stream"`
	Decomp  string   `json:"decomp"`
	Streams int      `json:"streams"`
}

func (s requestSpec) toRequest() (model.Request, error) {
	begin, err := time.Parse(time.RFC3339, s.Begin)
	if err != nil {
		return model.Request{}, fmt.Errorf("request %s: parsing begin: %w", s.ID, err)
	}
	end, err := time.Parse(time.RFC3339, s.End)
	if err != nil {
		return model.Request{}, fmt.Errorf("request %s: parsing end: %w", s.ID, err)
	}
	return model.Request{
		ID:            s.ID,
		Sources:       s.Sources,
		Range:         model.TimeInterval{Begin: begin, End: end},
		StreamType:    parseStreamType(s.Stream),
		Decomposition: parseDecomp(s.Decomp),
		StreamCount:   s.Streams,
		Options:       model.RequestOptions{GridStreamsPerAxis: s.Streams},
	}, nil
}

// scoreCmd replays a batch of requests against an endpoint, folding
// each run's performance record into a scoring.Summary.
type scoreCmd struct {
	RequestsFile  string  `arg:"" help:"JSON file containing an array of request specs."`
	Repeat        int     `help:"Replay the whole batch this many times." default:"1"`
	ThresholdMBps float64 `name:"threshold-mbps" help:"Data-rate threshold counted as a 'hit'; defaults to the configured scoring threshold."`
	Persist       bool    `help:"Also write the summary to a timestamped output file."`
}

func (cmd *scoreCmd) Run(opts *globalOptions) error {
	if err := opts.cfg.Validate(); err != nil {
		return err
	}
	raw, err := os.ReadFile(cmd.RequestsFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cmd.RequestsFile, err)
	}
	var specs []requestSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return fmt.Errorf("parsing %s: %w", cmd.RequestsFile, err)
	}

	threshold := cmd.ThresholdMBps
	if threshold == 0 {
		threshold = opts.cfg.Scoring.ThresholdMBps
	}

	channel, conn, err := dialChannel(opts.cfg)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck

	asm := assembler.New(channel, assembler.Config{
		BufferCapacity: opts.cfg.Buffer.Capacity,
		StrictOrdering: opts.cfg.Assembler.StrictOrdering,
	})

	summary := scoring.NewSummary(threshold)
	configScore := &scoring.ConfigScore{Name: opts.cfg.Transport.Endpoint}
	var records []scoring.Record

	for pass := 0; pass < cmd.Repeat; pass++ {
		for _, spec := range specs {
			req, err := spec.toRequest()
			if err != nil {
				return err
			}
			req.Options.ToleratePartial = opts.cfg.Assembler.TolerantDefault
			ctx, cancel := context.WithTimeout(context.Background(), opts.cfg.Transport.CallTimeout*time.Duration(max(1, req.StreamCount)))
			result, runErr := asm.Process(ctx, req)
			cancel()
			if runErr != nil {
				opts.logger.Warn("run failed", zap.String("request", req.ID), zap.Error(runErr))
				continue
			}
			rec := scoring.NewRecord(req.ID, result.RecoveredMessages, result.RecoveredBytes, result.CorrelatedBlocks,
				result.DurationRecovery.Seconds(), result.DurationAssembly.Seconds(), result.OrderingOK, result.DisjointOK)
			records = append(records, rec)
			summary.Add(rec)
			configScore.Record(rec.DataRateMBps, rec.DataRateMBps >= threshold)
		}
	}

	body := renderSummary(records, summary, configScore)
	fmt.Print(body)
	if cmd.Persist {
		path, werr := persistOutput("dp-query-cli-score", body)
		if werr != nil {
			return werr
		}
		opts.logger.Info("wrote summary", zap.String("path", path))
	}
	return nil
}

func renderSummary(records []scoring.Record, summary *scoring.Summary, cfg *scoring.ConfigScore) string {
	var b strings.Builder

	w := table.NewWriter()
	w.SetOutputMirror(&b)
	w.AppendHeader(table.Row{"request", "messages", "bytes", "blocks", "rate (MB/s)", "ordering", "disjoint"})
	for _, r := range records {
		w.AppendRow(table.Row{r.RequestID, r.RecoveredMessages, r.RecoveredBytes, r.CorrelatedBlocks,
			fmt.Sprintf("%.3f", r.DataRateMBps), r.OrderingOK, r.DisjointOK})
	}
	w.Render()

	fmt.Fprintf(&b, "\nruns=%d mean=%.3f MB/s min=%.3f max=%.3f stddev=%.3f hits>=threshold=%d\n",
		summary.Count.Load(), summary.Mean(), summary.Min(), summary.Max(), summary.StdDev(), summary.ThresholdHits())
	fmt.Fprintf(&b, "configuration %q: avg=%.3f MB/s hits=%d/%d\n", cfg.Name, cfg.AverageRate(), cfg.Hits, cfg.Runs)
	return b.String()
}
