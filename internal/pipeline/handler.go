package pipeline

import (
	"context"
	"fmt"

	"github.com/overart/txlogs/internal/jobs"
	"github.com/overart/txlogs/internal/logger"
)

// FetchFunc resolves a source URI to the dump blob it points at.
type FetchFunc func(ctx context.Context, uri string) ([]byte, error)

// ConvertJobHandler builds the jobs.JobHandler that executes convert jobs
// against the given ingestor. fetch resolves jobs that carry a SourceURI
// instead of inline text; it may be nil when only inline jobs are expected.
func ConvertJobHandler(in *Ingestor, fetch FetchFunc) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		convJob, ok := job.(*jobs.ConvertJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log := logger.FromContext(ctx)

		blob := convJob.RawText
		if blob == "" {
			if convJob.SourceURI == "" {
				return fmt.Errorf("job %s has neither raw text nor source URI", convJob.JobID)
			}
			if fetch == nil {
				return fmt.Errorf("job %s needs a source fetcher for %s", convJob.JobID, convJob.SourceURI)
			}
			data, err := fetch(ctx, convJob.SourceURI)
			if err != nil {
				return fmt.Errorf("fetch source %s: %w", convJob.SourceURI, err)
			}
			blob = string(data)
		}

		summary, _ := in.Run(ctx, blob)
		convJob.RecordsTotal = summary.Total
		convJob.RecordsConverted = summary.Converted
		convJob.RecordsFailed = summary.Failed

		log.Info().
			Str("job_id", convJob.JobID).
			Int("total", summary.Total).
			Int("converted", summary.Converted).
			Int("failed", summary.Failed).
			Msg("Convert job finished")

		if summary.Total == 0 {
			return fmt.Errorf("job %s: no transaction records found in blob", convJob.JobID)
		}
		return nil
	}
}
