package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overart/txlogs/internal/api/middleware"
	infraBQ "github.com/overart/txlogs/internal/infra/bigquery"
	"github.com/overart/txlogs/internal/jobs"
	"github.com/overart/txlogs/internal/pipeline"
	"github.com/overart/txlogs/internal/store"
)

// maxBlobBytes bounds how much dump text one request may carry.
const maxBlobBytes = 8 << 20

var errBlobTooLarge = errors.New("request body too large")

// convertedRecord is the per-record entry in a synchronous convert response.
type convertedRecord struct {
	Index         int    `json:"index"`
	TransactionID string `json:"transaction_id,omitempty"`
	Key           string `json:"key,omitempty"`
	Status        string `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	ingestor  *pipeline.Ingestor
	reader    *store.Reader
	publisher jobs.Publisher
	warehouse infraBQ.RecordSink
	log       zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
// warehouse may be nil when no warehouse sink is configured.
func NewTransactionsHandler(ingestor *pipeline.Ingestor, reader *store.Reader, publisher jobs.Publisher, warehouse infraBQ.RecordSink, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		ingestor:  ingestor,
		reader:    reader,
		publisher: publisher,
		warehouse: warehouse,
		log:       log,
	}
}

// readBlob extracts the dump blob from a request body. JSON bodies carry it
// in a raw_text field; any other content type is taken as the blob itself.
// A body over maxBlobBytes is rejected rather than truncated mid-record.
func readBlob(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBlobBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxBlobBytes {
		return "", errBlobTooLarge
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			RawText string `json:"raw_text"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return "", err
		}
		return req.RawText, nil
	}

	return string(body), nil
}

// Convert handles POST /api/transactions/convert
// It converts the submitted blob synchronously and reports per-record results.
func (h *TransactionsHandler) Convert(w http.ResponseWriter, r *http.Request) {
	blob, err := readBlob(r)
	if err != nil {
		if errors.Is(err, errBlobTooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body exceeds size limit")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(blob) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Request body is empty")
		return
	}

	summary, results := h.ingestor.Run(r.Context(), blob)

	records := make([]convertedRecord, 0, len(results))
	for _, res := range results {
		rec := convertedRecord{Index: res.Index}
		if res.Failed() {
			rec.Error = res.Err.Error()
		} else {
			rec.TransactionID = res.Bundle.TransactionID
			rec.Status = res.Bundle.Status
			if key, err := res.Bundle.Key(); err == nil {
				rec.Key = key
			}
		}
		records = append(records, rec)
	}

	status := http.StatusOK
	if summary.Total == 0 {
		status = http.StatusBadRequest
	}
	middleware.WriteJSON(w, status, map[string]interface{}{
		"total":     summary.Total,
		"converted": summary.Converted,
		"failed":    summary.Failed,
		"records":   records,
	})
}

// Ingest handles POST /api/transactions/ingest
// It enqueues a conversion job and returns immediately.
func (h *TransactionsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawText   string `json:"raw_text"`
		SourceURI string `json:"source_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RawText == "" && req.SourceURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "raw_text or source_uri is required")
		return
	}

	job := &jobs.ConvertJob{
		RawText:   req.RawText,
		SourceURI: req.SourceURI,
	}

	if err := h.publisher.PublishConvert(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue convert job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue convert job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source_uri", job.SourceURI).Msg("Convert job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// ListTransactions handles GET /api/transactions
// Bundles are selected by ?date=YYYY-MM-DD, or by ?days=N counting back from
// today. With neither parameter, today's bundles are returned.
// ?source=warehouse reads from the warehouse instead, selected by
// ?start_date and ?end_date.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if query.Get("source") == "warehouse" {
		h.listFromWarehouse(w, r)
		return
	}

	if dateStr := query.Get("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		bundles, err := h.reader.LoadByDate(ctx, day)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to load bundles")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
			return
		}
		writeBundles(w, bundles)
		return
	}

	days := 1
	if daysStr := query.Get("days"); daysStr != "" {
		n, err := strconv.Atoi(daysStr)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid days value")
			return
		}
		days = n
	}

	bundles, err := h.reader.LoadRecent(ctx, days)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load bundles")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transactions")
		return
	}
	writeBundles(w, bundles)
}

// listFromWarehouse serves GET /api/transactions?source=warehouse by querying
// the warehouse over [start_date, end_date]; defaults cover the last year.
func (h *TransactionsHandler) listFromWarehouse(w http.ResponseWriter, r *http.Request) {
	if h.warehouse == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Warehouse is not configured")
		return
	}

	query := r.URL.Query()

	startDate := time.Now().AddDate(-1, 0, 0)
	endDate := time.Now()
	var err error

	if startStr := query.Get("start_date"); startStr != "" {
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	}
	if endStr := query.Get("end_date"); endStr != "" {
		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	}

	rows, err := h.warehouse.QueryByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query warehouse")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if rows == nil {
		rows = []*infraBQ.RecordRow{}
	}
	writeBundles(w, rows)
}

func writeBundles(w http.ResponseWriter, bundles interface{}) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": bundles,
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		SourceURI: query.Get("source_uri"),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
