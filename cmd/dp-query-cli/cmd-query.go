package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/assembler"
	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/model"
)

// queryCmd decomposes, recovers and assembles a single request against a
// real query endpoint, printing the resulting sampled aggregate as a
// table.
type queryCmd struct {
	Sources []string `arg:"" help:"Source names; a single comma-separated argument is also accepted."`
	Begin   string   `help:"Range start, RFC3339." required:""`
	End     string   `help:"Range end, RFC3339." required:""`
	Stream  string   `help:"Stream kind: unary, server, bidi." enum:"unary,server,bidi" default:"unary"`
	Decomp  string   `help:"Decomposition: none, horizontal, vertical, grid." enum:"none,horizontal,vertical,grid" default:"none"`
	Streams int      `help:"Sub-request stream count (grid uses its square)." default:"1"`
	Partial bool     `name:"tolerate-partial" help:"Accept a partial aggregate on recovery failure."`
	Persist bool     `help:"Also write the result to a timestamped output file."`
}

func (cmd *queryCmd) Run(opts *globalOptions) error {
	if err := opts.cfg.Validate(); err != nil {
		return err
	}
	begin, err := time.Parse(time.RFC3339, cmd.Begin)
	if err != nil {
		return fmt.Errorf("parsing --begin: %w", err)
	}
	end, err := time.Parse(time.RFC3339, cmd.End)
	if err != nil {
		return fmt.Errorf("parsing --end: %w", err)
	}

	req := model.Request{
		ID:            uuid.NewString(),
		Sources:       splitSources(cmd.Sources),
		Range:         model.TimeInterval{Begin: begin, End: end},
		StreamType:    parseStreamType(cmd.Stream),
		Decomposition: parseDecomp(cmd.Decomp),
		StreamCount:   cmd.Streams,
		Options:       model.RequestOptions{ToleratePartial: cmd.Partial || opts.cfg.Assembler.TolerantDefault, GridStreamsPerAxis: cmd.Streams},
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

	ctx, cancel := context.WithTimeout(context.Background(), opts.cfg.Transport.CallTimeout*time.Duration(max(1, cmd.Streams)))
	defer cancel()

	result, err := asm.Process(ctx, req)
	if err != nil {
		opts.logger.Error("query failed", zap.Error(err))
		return err
	}

	body := renderResult(result)
	fmt.Print(body)
	if cmd.Persist {
		path, werr := persistOutput("dp-query-cli-query", body)
		if werr != nil {
			return werr
		}
		opts.logger.Info("wrote result", zap.String("path", path))
	}
	return nil
}

func splitSources(args []string) []string {
	var out []string
	for _, a := range args {
		for _, s := range strings.Split(a, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func parseStreamType(s string) model.StreamType {
	switch s {
	case "server":
		return model.StreamServer
	case "bidi":
		return model.StreamBidi
	default:
		return model.StreamUnary
	}
}

func parseDecomp(s string) model.Decomp {
	switch s {
	case "horizontal":
		return model.DecompHorizontal
	case "vertical":
		return model.DecompVertical
	case "grid":
		return model.DecompGrid
	default:
		return model.DecompNone
	}
}

func renderResult(r *assembler.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "request %s: %d block(s), partial=%v, ordering-ok=%v, disjoint-ok=%v\n",
		r.RequestID, len(r.Aggregate.Blocks), r.Aggregate.Partial, r.OrderingOK, r.DisjointOK)
	fmt.Fprintf(&b, "recovered %d message(s), %s in %s; assembled in %s\n\n",
		r.RecoveredMessages, humanize.Bytes(uint64(r.RecoveredBytes)), r.DurationRecovery, r.DurationAssembly)

	w := table.NewWriter()
	w.SetOutputMirror(&b)
	w.AppendHeader(table.Row{"#", "begin", "end", "count", "sources"})
	for i, blk := range r.Aggregate.Blocks {
		domain := blk.Domain()
		names := make([]string, 0, len(blk.Series))
		for name := range blk.Series {
			names = append(names, name)
		}
		w.AppendRow(table.Row{i, domain.Begin.Format(time.RFC3339), domain.End.Format(time.RFC3339), blk.Timestamps.Count(), strings.Join(names, ",")})
	}
	w.Render()
	b.WriteString("\n")
	return b.String()
}
