package cli

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/filter"
	"github.com/vburojevic/tdb/internal/output"
	"github.com/vburojevic/tdb/internal/replay"
)

// EventsCmd lists the events of a recording
type EventsCmd struct {
	Trace    string   `arg:"" type:"existingfile" help:"Trace recording (NDJSON) to list"`
	Where    []string `short:"w" help:"Filter events: FIELD OP VALUE, fields kind,function,file,line,description, ops = != ~ !~ >= <= ^ $ (repeatable, all must match)"`
	Pattern  string   `short:"p" help:"Regex the event description must match"`
	Exclude  []string `short:"x" help:"Regex that drops matching descriptions (repeatable)"`
	Collapse bool     `help:"Fold consecutive duplicate events into one row with a repeat count"`
	Limit    int      `short:"n" help:"Show at most N rows (0 = all)"`
}

// collapsedEvent is an event record with its repeat count
type collapsedEvent struct {
	domain.EventRecord
	Repeat int `json:"repeat,omitempty"`
}

// Run executes the events command
func (c *EventsCmd) Run(globals *Globals) error {
	if c.Limit < 0 {
		return outputErrorCommon(globals, codeInvalidFlags, "--limit must be >= 0")
	}

	pipeline, err := c.pipeline()
	if err != nil {
		return outputErrorCommon(globals, codeInvalidWhere, err.Error(), "e.g. --where kind=call --where line>=10")
	}

	rec, err := replay.LoadFile(c.Trace)
	if err != nil {
		return outputErrorCommon(globals, codeRecordingInvalid, err.Error())
	}
	globals.Debug("loaded %d events from %s", len(rec.Events), c.Trace)

	records := rec.EventRecords(rec.SourceCache())
	matched := lo.Filter(records, func(ev domain.EventRecord, _ int) bool {
		return pipeline.Match(&ev)
	})

	var rows []collapsedEvent
	if c.Collapse {
		rows = lo.Map(filter.Collapse(matched), func(g filter.Collapsed, _ int) collapsedEvent {
			return collapsedEvent{EventRecord: *g.Event, Repeat: g.Count}
		})
	} else {
		rows = lo.Map(matched, func(ev domain.EventRecord, _ int) collapsedEvent {
			return collapsedEvent{EventRecord: ev}
		})
	}
	if c.Limit > 0 && len(rows) > c.Limit {
		rows = rows[:c.Limit]
	}

	if globals.ndjson() {
		w := output.NewNDJSONWriter(globals.Stdout)
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	if err := c.renderTable(globals, rows); err != nil {
		return err
	}
	globals.hint("%d of %d events", len(rows), len(records))
	return nil
}

func (c *EventsCmd) pipeline() (*filter.Pipeline, error) {
	where, err := filter.NewWhereFilter(c.Where)
	if err != nil {
		return nil, err
	}

	var pattern *regexp.Regexp
	if c.Pattern != "" {
		if pattern, err = regexp.Compile(c.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	excludes := make([]*regexp.Regexp, 0, len(c.Exclude))
	for _, x := range c.Exclude {
		re, err := regexp.Compile(x)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
		excludes = append(excludes, re)
	}

	return filter.NewPipeline(pattern, excludes, where), nil
}

func (c *EventsCmd) renderTable(globals *Globals, rows []collapsedEvent) error {
	header := []string{"Seq", "Kind", "Function", "Location", "Description"}
	if c.Collapse {
		header = append(header, "Repeat")
	}

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := []string{
			strconv.Itoa(row.Seq),
			row.Kind,
			row.Function,
			fmt.Sprintf("%s:%d", row.File, row.Line),
			row.Description,
		}
		if c.Collapse {
			cells = append(cells, "x"+strconv.Itoa(row.Repeat))
		}
		data = append(data, cells)
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header(lo.ToAnySlice(header)...)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
