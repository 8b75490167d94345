package timeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"fsyncprof/internal/fsynclog"
)

const (
	defaultBatchSize  = 512
	defaultQueueDepth = 16
)

// RunOptions tunes the read pipeline.
type RunOptions struct {
	// BatchSize is the number of physical lines per batch handed from the
	// reader to the engine.
	BatchSize int
	// QueueDepth is the number of batches buffered between the two.
	QueueDepth int
	// Progress, when set, is called on the engine goroutine after every
	// batch.
	Progress func(Stats)
}

// batch is a run of consecutive lines. records holds only matched lines.
type batch struct {
	records []fsynclog.Record
	lines   int   // lines read so far, including this batch
	bytes   int64 // bytes read so far, including this batch
}

// Run reads the log from r and feeds every classified line to e. Reading and
// classification happen on a separate goroutine; the engine sees records in
// line order. Run returns the first protocol violation, read error or
// context error.
func Run(ctx context.Context, r io.Reader, e *Engine, opts RunOptions) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = defaultQueueDepth
	}

	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan batch, opts.QueueDepth)

	g.Go(func() error {
		defer close(batches)
		return scan(ctx, r, batches, opts.BatchSize)
	})

	g.Go(func() error {
		for b := range batches {
			for _, rec := range b.records {
				if err := e.Process(rec); err != nil {
					return err
				}
			}
			e.stats.Lines = b.lines
			e.stats.Bytes = b.bytes
			if opts.Progress != nil {
				opts.Progress(e.Stats())
			}
		}
		return nil
	})

	return g.Wait()
}

func scan(ctx context.Context, r io.Reader, out chan<- batch, size int) error {
	br := bufio.NewReaderSize(r, 1<<16)
	var (
		lineNo int
		nbytes int64
		cur    batch
		inB    int
	)
	send := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur.lines = lineNo
		cur.bytes = nbytes
		select {
		case out <- cur:
		case <-ctx.Done():
			return ctx.Err()
		}
		cur = batch{}
		inB = 0
		return nil
	}

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			nbytes += int64(len(line))
			if rec, ok := fsynclog.Classify(line); ok {
				rec.Line = lineNo
				cur.records = append(cur.records, rec)
			}
			inB++
			if inB >= size {
				if serr := send(); serr != nil {
					return serr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read log: %w", err)
		}
	}
	if inB > 0 || lineNo == 0 {
		return send()
	}
	return nil
}

// ProcessLines feeds lines to e synchronously, numbering them from 1. It is
// the in-memory counterpart of Run.
func ProcessLines(e *Engine, lines []string) error {
	for i, line := range lines {
		e.stats.Lines++
		e.stats.Bytes += int64(len(line)) + 1
		rec, ok := fsynclog.Classify(line)
		if !ok {
			continue
		}
		rec.Line = i + 1
		if err := e.Process(rec); err != nil {
			return err
		}
	}
	return nil
}
