package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/overart/txlogs/internal/txlog"
)

const dateFormat = "2006-01-02"

// RecordSink mirrors converted records into the warehouse.
// This interface enables mocking and testing of warehouse functionality.
type RecordSink interface {
	// InsertBundles converts bundles to rows and streams them into the table.
	InsertBundles(ctx context.Context, bundles []*txlog.Bundle) error

	// QueryByDateRange returns rows whose log date falls in [start, end].
	QueryByDateRange(ctx context.Context, start, end time.Time) ([]*RecordRow, error)

	// Close releases the underlying client.
	Close() error
}

// Sink is the BigQuery-backed RecordSink.
type Sink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewSink creates a Sink writing to projectID.dataset.table.
func NewSink(ctx context.Context, projectID, dataset, table string) (*Sink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Sink{client: client, dataset: dataset, table: table}, nil
}

func (s *Sink) InsertBundles(ctx context.Context, bundles []*txlog.Bundle) error {
	if len(bundles) == 0 {
		return nil
	}

	rows := make([]*RecordRow, 0, len(bundles))
	for _, b := range bundles {
		row, err := RowFromBundle(b)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("inserting %d rows: %w", len(rows), err)
	}
	return nil
}

func (s *Sink) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*RecordRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			record_id,
			transaction_id,
			log_date,
			log_ts,
			status,
			amount,
			currency,
			storage_key,
			raw_text,
			compact,
			ingested_ts
		FROM %s.%s
		WHERE log_date >= @start_date
		  AND log_date <= @end_date
		ORDER BY log_ts, transaction_id
	`, s.dataset, s.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.Format(dateFormat)},
		{Name: "end_date", Value: end.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var rows []*RecordRow
	for {
		var r RecordRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

func (s *Sink) Close() error {
	return s.client.Close()
}
