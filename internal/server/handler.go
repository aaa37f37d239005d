package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"careermatch/internal/ai"
	careermatchErrors "careermatch/internal/errors"
	"careermatch/internal/extract"
	"careermatch/internal/fit"
	"careermatch/internal/observability"
	"careermatch/internal/report"
	"careermatch/internal/storage"
	"careermatch/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// buildPipeline creates the two stage services and wires them into a
// pipeline. Callers own the returned close function.
func (s *Server) buildPipeline() (*fit.Pipeline, func(), error) {
	fitConfig := s.AppConfig.GetFitConfig()
	fitService, err := ai.NewService(&fitConfig, ai.OpFitAnalysis, s.Logger)
	if err != nil {
		return nil, nil, err
	}

	suggestConfig := s.AppConfig.GetSuggestConfig()
	suggestService, err := ai.NewService(&suggestConfig, ai.OpSuggestions, s.Logger)
	if err != nil {
		_ = fitService.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = fitService.Close()
		_ = suggestService.Close()
	}
	return fit.NewPipeline(fitService, suggestService, s.Logger), cleanup, nil
}

// createAnalyzeHandler wraps the synchronous analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("careermatch.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.CVText) == "" {
			err := fmt.Errorf("missing cv text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing CV text", "cvText field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobText) == "" {
			err := fmt.Errorf("missing job text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job text", "jobText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.cv_length", len(req.CVText)),
			attribute.Int("request.job_length", len(req.JobText)),
			attribute.String("operation", "analyze"),
		)

		pipeline, cleanup, err := s.buildPipeline()
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		defer cleanup()

		input := types.AnalyzeInput{
			CVText:  req.CVText,
			JobText: req.JobText,
		}

		metrics := om.GetMetrics()
		var combined *types.CombinedReport
		var usage *ai.TokenUsage
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, pipelineErr := pipeline.Analyze(ctx, input)
			combined = output
			usage = tokenUsage
			return &observability.AIOperationResult{
				Error:      pipelineErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "fit_report_generated", false, om,
				attribute.String("error", err.Error()))
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "fit_report_generated", true, om,
			attribute.Int("fit.score", combined.Fit.FitScore),
			attribute.String("fit.decision", combined.Decision.Code))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("fit.score", combined.Fit.FitScore),
			attribute.String("fit.decision", combined.Decision.Code),
		)

		response := AnalyzeResponse{CombinedReport: combined}
		if usage != nil {
			response.TokenUsage = &TokenUsageInfo{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// jobInput is what the upload handler collects before queueing a job.
type jobInput struct {
	cvText  string
	jobURL  string
	jobText string
}

// createUploadHandler accepts a CV plus a job reference and queues a
// background analysis job.
func (s *Server) createUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("careermatch.api")
		_, span := tracer.Start(r.Context(), "api.upload")
		defer span.End()

		input, err := s.parseUploadRequest(r, om)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppError(w, err)
			return
		}

		jobID := s.Store.NewJob()
		span.SetAttributes(
			attribute.String("job.id", jobID),
			attribute.Int("request.cv_length", len(input.cvText)),
			attribute.Bool("request.has_url", input.jobURL != ""),
		)

		if err := s.Store.SaveInput(jobID, "cv.txt", input.cvText); err != nil {
			s.Logger.LogError(err, "Failed to persist CV input", "job_id", jobID)
		}

		// The request context dies with the response; the job carries on
		// with its own.
		finish := om.GetMetrics().TrackJobStarted(context.Background(), om)
		go s.runJob(jobID, input, om, finish)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(JobAcceptedResponse{
			JobID:  jobID,
			Status: string(storage.StatusUploaded),
		}); err != nil {
			span.RecordError(err)
		}
	}
}

// parseUploadRequest extracts the CV text and job reference from a multipart
// upload. The CV arrives as a PDF or plain-text file under "cv", or inline
// under "cv_text"; the job as "job_url" or "job_text".
func (s *Server) parseUploadRequest(r *http.Request, om *observability.ObservabilityManager) (*jobInput, error) {
	if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
		return nil, careermatchErrors.NewValidationError(careermatchErrors.ErrCodeInvalidRequest,
			"Request is not a valid multipart form", err)
	}

	cvText, err := s.readCVUpload(r, om)
	if err != nil {
		return nil, err
	}
	cvText = extract.SanitizeWhitespace(cvText)
	if cvText == "" {
		return nil, careermatchErrors.NewValidationError(careermatchErrors.ErrCodeEmptyInput,
			"CV is empty after extraction", nil)
	}
	cvText = extract.ClampChars(cvText, s.AppConfig.Extract.MaxInputChars)

	jobURL := strings.TrimSpace(r.FormValue("job_url"))
	jobText := strings.TrimSpace(r.FormValue("job_text"))
	if jobURL == "" && jobText == "" {
		return nil, careermatchErrors.NewValidationError(careermatchErrors.ErrCodeEmptyInput,
			"Either job_url or job_text is required", nil)
	}

	return &jobInput{
		cvText:  cvText,
		jobURL:  jobURL,
		jobText: jobText,
	}, nil
}

// readCVUpload returns the CV as plain text, extracting from PDF when the
// uploaded file is one.
func (s *Server) readCVUpload(r *http.Request, om *observability.ObservabilityManager) (string, error) {
	file, header, err := r.FormFile("cv")
	if err != nil {
		if inline := strings.TrimSpace(r.FormValue("cv_text")); inline != "" {
			return inline, nil
		}
		return "", careermatchErrors.NewValidationError(careermatchErrors.ErrCodeEmptyInput,
			"A cv file or cv_text field is required", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", careermatchErrors.NewIOError(careermatchErrors.ErrCodeFileNotReadable,
			"Failed to read uploaded CV", err)
	}

	metrics := om.GetMetrics()
	if isPDFUpload(header.Filename, data) {
		text, err := extract.PDFToText(data)
		metrics.RecordBusinessMetric(r.Context(), "cv_extracted", err == nil, om,
			attribute.String("format", "pdf"))
		return text, err
	}

	metrics.RecordBusinessMetric(r.Context(), "cv_extracted", true, om,
		attribute.String("format", "text"))
	return string(data), nil
}

func isPDFUpload(filename string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// runJob executes one queued analysis job to completion. It owns its own
// context and records the terminal state in the store.
func (s *Server) runJob(jobID string, input *jobInput, om *observability.ObservabilityManager, finish func(status string)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout())
	defer cancel()

	tracer := om.Tracer("careermatch.jobs")
	ctx, span := tracer.Start(ctx, "job.run")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))

	s.Store.SetStatus(jobID, storage.StatusRunning, "")

	combined, err := s.executeJob(ctx, jobID, input, om)
	if err != nil {
		span.RecordError(err)
		s.failJob(jobID, err)
		finish("error")
		return
	}

	s.completeJob(jobID, combined)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("fit.score", combined.Fit.FitScore),
		attribute.String("fit.decision", combined.Decision.Code),
	)
	finish("done")
}

// executeJob resolves the job text, runs the pipeline, and returns the
// combined report with the job title attached.
func (s *Server) executeJob(ctx context.Context, jobID string, input *jobInput, om *observability.ObservabilityManager) (*types.CombinedReport, error) {
	metrics := om.GetMetrics()

	jobText := input.jobText
	jobTitle := ""
	if input.jobURL != "" {
		posting, err := s.Fetcher.FetchJobPosting(ctx, input.jobURL)
		metrics.RecordBusinessMetric(ctx, "job_posting_fetched", err == nil, om)
		if err != nil {
			return nil, err
		}
		jobText = posting.Text
		jobTitle = posting.Title

		if saveErr := s.Store.SaveInput(jobID, "job_raw.html", posting.RawHTML); saveErr != nil {
			s.Logger.LogError(saveErr, "Failed to persist raw job page", "job_id", jobID)
		}
		s.Store.SetJobTitle(jobID, jobTitle)
	}

	if err := s.Store.SaveInput(jobID, "job.txt", jobText); err != nil {
		s.Logger.LogError(err, "Failed to persist job text", "job_id", jobID)
	}

	pipeline, cleanup, err := s.buildPipeline()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Keep per-stage model output next to the job inputs so a rejected
	// response can be inspected after the fact.
	pipeline.SetArtifactSink(func(name, content string) {
		if saveErr := s.Store.SaveDebug(jobID, name, content); saveErr != nil {
			s.Logger.LogError(saveErr, "Failed to persist model debug artifact",
				"job_id", jobID, "artifact", name)
		}
	})

	var combined *types.CombinedReport
	err = metrics.TrackAIOperationWithTokens(ctx, "job_analyze", func(ctx context.Context) *observability.AIOperationResult {
		output, tokenUsage, pipelineErr := pipeline.Analyze(ctx, types.AnalyzeInput{
			CVText:  input.cvText,
			JobText: jobText,
		})
		combined = output
		return &observability.AIOperationResult{
			Error:      pipelineErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)
	if err != nil {
		metrics.RecordBusinessMetric(ctx, "fit_report_generated", false, om,
			attribute.String("error", err.Error()))
		return nil, err
	}

	combined.JobTitle = jobTitle
	metrics.RecordBusinessMetric(ctx, "fit_report_generated", true, om,
		attribute.Int("fit.score", combined.Fit.FitScore),
		attribute.String("fit.decision", combined.Decision.Code))
	return combined, nil
}

// completeJob renders the report artifacts and marks the job DONE.
func (s *Server) completeJob(jobID string, combined *types.CombinedReport) {
	reportJSON, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		s.failJob(jobID, careermatchErrors.NewInternalError(careermatchErrors.ErrCodeInvalidFormat,
			"Failed to serialize combined report", err))
		return
	}
	reportHTML := []byte(report.RenderHTML(combined, jobID))

	s.Store.SetResult(jobID, reportJSON, reportHTML)

	if err := s.Store.SaveOutput(jobID, "report.json", reportJSON); err != nil {
		s.Logger.LogError(err, "Failed to persist report JSON", "job_id", jobID)
	}
	if err := s.Store.SaveOutput(jobID, "report.html", reportHTML); err != nil {
		s.Logger.LogError(err, "Failed to persist report HTML", "job_id", jobID)
	}

	s.Logger.Info("Job completed",
		"job_id", jobID,
		"fit_score", combined.Fit.FitScore,
		"decision", combined.Decision.Code)
}

// failJob records the error on the job and persists it next to the inputs.
func (s *Server) failJob(jobID string, err error) {
	s.Logger.LogError(err, "Job failed", "job_id", jobID)
	s.Store.SetStatus(jobID, storage.StatusError, err.Error())

	if saveErr := s.Store.SaveInput(jobID, "error.txt", err.Error()); saveErr != nil {
		s.Logger.LogError(saveErr, "Failed to persist job error", "job_id", jobID)
	}
}

func (s *Server) jobTimeout() time.Duration {
	// A job covers the page fetch plus two model calls with retries.
	timeout := s.AppConfig.AI.Timeout*2 + s.AppConfig.Extract.FetchTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return timeout
}

// createJobStatusHandler returns the current state of one job.
func (s *Server) createJobStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("id")
		record, ok := s.Store.Get(jobID)
		if !ok {
			writeErrorWithCode(w, "Job not found", careermatchErrors.ErrCodeJobNotFound,
				"No job with the given id", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createJobReportHandler serves the finished report in the requested flavor.
func (s *Server) createJobReportHandler(asHTML bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("id")
		record, ok := s.Store.Get(jobID)
		if !ok {
			writeErrorWithCode(w, "Job not found", careermatchErrors.ErrCodeJobNotFound,
				"No job with the given id", http.StatusNotFound)
			return
		}
		if record.Status != storage.StatusDone {
			writeErrorWithCode(w, "Report not ready", careermatchErrors.ErrCodeJobNotReady,
				fmt.Sprintf("Job is in state %s", record.Status), http.StatusConflict)
			return
		}

		if asHTML {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(record.ReportHTML)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(record.ReportJSON)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
