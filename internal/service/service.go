package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"semsearch/internal/embedding"
	"semsearch/internal/logger"
)

// healthProbe is the fixed text encoded by HealthCheck.
const healthProbe = "embedding service health probe"

// Service is a concurrency-safe facade over an embedding model. Encode
// and search calls are offloaded to a bounded worker pool so blocking
// model computation never stalls callers beyond their own call, and the
// readiness state machine gates every operation.
type Service struct {
	model embedding.Model
	pool  *workerPool
	log   *logger.Logger

	maxWorkers int

	mu      sync.Mutex
	state   State
	loading *loadAttempt
}

// loadAttempt tracks one in-flight load. err is written before done is
// closed, so every waiter observes the attempt's own outcome.
type loadAttempt struct {
	done chan struct{}
	err  error
}

// Options configures a Service at construction. Zero values fall back
// to sensible defaults.
type Options struct {
	// MaxWorkers bounds the number of concurrent model computations.
	MaxWorkers int
	// QueueSize bounds the number of queued tasks beyond the workers.
	// Defaults to four slots per worker.
	QueueSize int
}

// New creates a Service in the Uninitialized state. The service takes
// exclusive ownership of the model and the pool it creates.
func New(model embedding.Model, opts Options, log *logger.Logger) *Service {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = workers * 4
	}
	return &Service{
		model:      model,
		pool:       newWorkerPool(workers, queue, log),
		log:        log,
		maxWorkers: workers,
		state:      StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadModel transitions the service to Ready by loading the model on the
// worker pool, or to Failed if the load fails. Calling it while a load
// is in flight waits for that attempt's outcome; calling it when Ready
// is a no-op. A cancelled ctx abandons the wait without interrupting the
// load itself.
func (s *Service) LoadModel(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateLoading:
		attempt := s.loading
		s.mu.Unlock()
		return awaitLoad(ctx, attempt)
	}

	s.state = StateLoading
	attempt := &loadAttempt{done: make(chan struct{})}
	s.loading = attempt
	s.mu.Unlock()

	s.log.Info("loading embedding model %s", s.model.Info().Name)
	go func() {
		_, err := s.pool.submit(context.Background(), func() ([][]float32, error) {
			return nil, s.model.Load(context.Background())
		})

		s.mu.Lock()
		if err != nil {
			s.state = StateFailed
			attempt.err = &LoadError{Err: err}
			s.log.Error("model load failed: %v", err)
		} else {
			s.state = StateReady
			info := s.model.Info()
			s.log.Info("model %s ready (dimension=%d, device=%s)", info.Name, info.Dimension, info.Device)
		}
		s.mu.Unlock()
		close(attempt.done)
	}()

	return awaitLoad(ctx, attempt)
}

func awaitLoad(ctx context.Context, attempt *loadAttempt) error {
	select {
	case <-attempt.done:
		return attempt.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EncodeTexts embeds the given texts on the worker pool. One vector per
// input text, order-preserving. An empty input yields an empty result.
func (s *Service) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return s.pool.submit(ctx, func() ([][]float32, error) {
		return s.model.Encode(context.Background(), texts)
	})
}

// EncodeText embeds a single text.
func (s *Service) EncodeText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EncodeTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// SimilaritySearch embeds the query and the candidate documents, scores
// every candidate by cosine similarity, and returns the topK best.
// Ordering is score descending, ties broken by ascending input index.
// The query and document encodes run as two concurrent pool tasks; the
// ranking step waits for both.
func (s *Service) SimilaritySearch(ctx context.Context, query string, documents []string, topK int) ([]SimilarityResult, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}
	if topK < 0 {
		return nil, &ComputationError{Reason: "top_k must be non-negative"}
	}
	if len(documents) == 0 || topK == 0 {
		return []SimilarityResult{}, nil
	}

	queryCh := make(chan taskResult, 1)
	go func() {
		vecs, err := s.pool.submit(ctx, func() ([][]float32, error) {
			return s.model.Encode(context.Background(), []string{query})
		})
		queryCh <- taskResult{vectors: vecs, err: err}
	}()

	docVecs, docErr := s.pool.submit(ctx, func() ([][]float32, error) {
		return s.model.Encode(context.Background(), documents)
	})
	queryRes := <-queryCh

	if queryRes.err != nil {
		return nil, queryRes.err
	}
	if docErr != nil {
		return nil, docErr
	}
	if len(queryRes.vectors) != 1 {
		return nil, &InfrastructureError{Reason: "query encode returned no vector"}
	}

	return rankBySimilarity(queryRes.vectors[0], documents, docVecs, topK)
}

// ServiceInfo is a read-only snapshot of the service and its model.
type ServiceInfo struct {
	Ready      bool                `json:"ready"`
	State      string              `json:"state"`
	MaxWorkers int                 `json:"max_workers"`
	Model      embedding.ModelInfo `json:"model"`
}

// Info is always callable, in any state.
func (s *Service) Info() ServiceInfo {
	state := s.State()
	return ServiceInfo{
		Ready:      state == StateReady,
		State:      state.String(),
		MaxWorkers: s.maxWorkers,
		Model:      s.model.Info(),
	}
}

// HealthStatus is the structured result of a health check.
type HealthStatus struct {
	Status         string              `json:"status"` // healthy or unhealthy
	Reason         string              `json:"reason,omitempty"`
	ProbeID        string              `json:"probe_id"`
	ProcessingTime time.Duration       `json:"processing_time"`
	Model          embedding.ModelInfo `json:"model"`
}

// Healthy reports whether the status is healthy.
func (h HealthStatus) Healthy() bool { return h.Status == "healthy" }

// HealthCheck encodes a fixed probe string and measures its latency.
// It never fails: any internal error is folded into an unhealthy status
// with the failure reason in the payload.
func (s *Service) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		ProbeID: uuid.NewString(),
		Model:   s.model.Info(),
	}

	if state := s.State(); state != StateReady {
		status.Status = "unhealthy"
		status.Reason = "service not ready (state: " + state.String() + ")"
		return status
	}

	start := time.Now()
	vecs, err := s.EncodeTexts(ctx, []string{healthProbe})
	status.ProcessingTime = time.Since(start)

	if err != nil {
		status.Status = "unhealthy"
		status.Reason = "probe encode failed: " + err.Error()
		return status
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		status.Status = "unhealthy"
		status.Reason = "probe encode returned no vector"
		return status
	}

	status.Status = "healthy"
	return status
}

// Close shuts down the worker pool. The service is unusable afterwards.
func (s *Service) Close() {
	s.pool.close()
}

func (s *Service) requireReady() error {
	if s.State() != StateReady {
		return ErrNotReady
	}
	return nil
}
