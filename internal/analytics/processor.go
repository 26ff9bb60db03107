package analytics

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/metrics"
	"Shortlink-Backend/pkg/useragent"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("analytics queue is full")
	ErrNotRunning  = errors.New("processor not running")
	ErrStopTimeout = errors.New("shutdown timeout reached")
)

// ClickData is the request metadata captured for one redirect.
type ClickData struct {
	URLID     int64
	ShortCode string
	IPAddress *string
	UserAgent *string
	Referrer  *string
	ClickedAt time.Time
}

// ClickWriter persists enriched click events.
type ClickWriter interface {
	CreateClick(ctx context.Context, click *domain.Click) error
}

// DeviceClassifier extracts device and browser from a User-Agent.
type DeviceClassifier interface {
	Parse(userAgent string) *useragent.DeviceInfo
}

// GeoLocator resolves an IP to a country code and city.
type GeoLocator interface {
	Lookup(ip string) (country, city *string)
}

// ProcessorConfig holds configuration for the analytics processor
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of attempts per click event
	RetryDelay      time.Duration // Base delay between retries, doubled each attempt
	ShutdownTimeout time.Duration // Time to wait for the queue to drain on Stop
	AttemptTimeout  time.Duration // Deadline for a single insert
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      500 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
		AttemptTimeout:  5 * time.Second,
	}
}

// Processor records click events asynchronously. Submitting never blocks
// the caller: when the queue is full the event is dropped.
type Processor struct {
	config   ProcessorConfig
	writer   ClickWriter
	devices  DeviceClassifier
	geo      GeoLocator
	log      *zap.Logger
	jobQueue chan ClickData
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	mu       sync.RWMutex
}

// NewProcessor creates a new analytics processor. devices and geo may be nil,
// in which case the corresponding columns stay empty.
func NewProcessor(writer ClickWriter, devices DeviceClassifier, geo GeoLocator, log *zap.Logger, config ProcessorConfig) *Processor {
	defaults := DefaultConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = defaults.AttemptTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		writer:   writer,
		devices:  devices,
		geo:      geo,
		log:      log.With(zap.String("component", "analytics_processor")),
		jobQueue: make(chan ClickData, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing analytics data
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("processor already started")
	}
	if p.stopped {
		return fmt.Errorf("processor cannot be restarted")
	}

	p.log.Info("starting analytics processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
		zap.Int("retry_attempts", p.config.RetryAttempts),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop closes the queue and waits for workers to drain it. Work still
// pending after ShutdownTimeout is abandoned.
func (p *Processor) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.started = false
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.log.Info("stopping analytics processor", zap.Int("pending", len(p.jobQueue)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info("analytics processor stopped gracefully")
		return nil
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		<-done
		p.log.Warn("analytics processor shutdown timeout reached",
			zap.Duration("timeout", p.config.ShutdownTimeout))
		return ErrStopTimeout
	}
}

// SubmitClick queues a click for asynchronous processing.
func (p *Processor) SubmitClick(data ClickData) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotRunning
	}

	if data.ClickedAt.IsZero() {
		data.ClickedAt = time.Now().UTC()
	}

	select {
	case p.jobQueue <- data:
		metrics.ClickQueueDepth.Set(float64(len(p.jobQueue)))
		return nil
	default:
		metrics.ClickEvents.WithLabelValues("dropped").Inc()
		p.log.Error("analytics queue is full, dropping click data",
			zap.String("short_code", data.ShortCode),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return ErrQueueFull
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Debug("analytics worker started")

	for data := range p.jobQueue {
		metrics.ClickQueueDepth.Set(float64(len(p.jobQueue)))
		p.processClickWithRetry(log, data)
	}

	log.Debug("analytics worker stopped")
}

func (p *Processor) processClickWithRetry(log *zap.Logger, data ClickData) {
	click := p.enrich(data)

	var lastErr error
	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(p.ctx, p.config.AttemptTimeout)
		err := p.writer.CreateClick(ctx, click)
		cancel()

		if err == nil {
			metrics.ClickEvents.WithLabelValues("stored").Inc()
			if attempt > 1 {
				log.Info("click processing succeeded after retry",
					zap.String("short_code", data.ShortCode),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		log.Warn("click processing failed",
			zap.String("short_code", data.ShortCode),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		// повторная вставка должна создать новую строку
		click.ID = 0

		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			metrics.ClickEvents.WithLabelValues("failed").Inc()
			log.Warn("worker shutdown during retry delay", zap.String("short_code", data.ShortCode))
			return
		}
	}

	metrics.ClickEvents.WithLabelValues("failed").Inc()
	log.Error("click processing failed after all retries",
		zap.String("short_code", data.ShortCode),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// enrich builds the stored event from request metadata.
func (p *Processor) enrich(data ClickData) *domain.Click {
	click := &domain.Click{
		URLID:     data.URLID,
		ClickedAt: data.ClickedAt.UTC(),
		IPAddress: data.IPAddress,
		UserAgent: data.UserAgent,
		Referrer:  data.Referrer,
	}

	if p.devices != nil && data.UserAgent != nil {
		if info := p.devices.Parse(*data.UserAgent); info != nil {
			click.DeviceType = info.DeviceType
			click.Browser = info.Browser
		}
	}

	if p.geo != nil && data.IPAddress != nil {
		click.Country, click.City = p.geo.Lookup(*data.IPAddress)
	}

	return click
}

// GetStats returns processor statistics
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
	}
}
