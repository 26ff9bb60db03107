package analytics

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/pkg/useragent"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu       sync.Mutex
	clicks   []*domain.Click
	failures int
	block    chan struct{}
}

func (w *fakeWriter) CreateClick(ctx context.Context, click *domain.Click) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("temporary failure")
	}
	copied := *click
	w.clicks = append(w.clicks, &copied)
	return nil
}

func (w *fakeWriter) stored() []*domain.Click {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*domain.Click(nil), w.clicks...)
}

type fakeClassifier struct{}

func (fakeClassifier) Parse(ua string) *useragent.DeviceInfo {
	device, browser := useragent.DeviceMobile, "Mobile Safari"
	return &useragent.DeviceInfo{DeviceType: &device, Browser: &browser}
}

type fakeGeo struct{}

func (fakeGeo) Lookup(ip string) (*string, *string) {
	country, city := "DE", "Berlin"
	return &country, &city
}

func testProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     2,
		BufferSize:      10,
		RetryAttempts:   3,
		RetryDelay:      time.Millisecond,
		ShutdownTimeout: time.Second,
	}
}

func strPtr(s string) *string { return &s }

func TestProcessor_EnrichesAndStores(t *testing.T) {
	writer := &fakeWriter{}
	p := NewProcessor(writer, fakeClassifier{}, fakeGeo{}, zap.NewNop(), testProcessorConfig())
	require.NoError(t, p.Start())

	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))
	require.NoError(t, p.SubmitClick(ClickData{
		URLID:     42,
		ShortCode: "abcd1234",
		IPAddress: strPtr("203.0.113.9"),
		UserAgent: strPtr("Mozilla/5.0 (iPhone)"),
		Referrer:  strPtr("https://news.example"),
		ClickedAt: at,
	}))
	require.NoError(t, p.Stop())

	clicks := writer.stored()
	require.Len(t, clicks, 1)
	c := clicks[0]
	assert.Equal(t, int64(42), c.URLID)
	assert.Equal(t, at.UTC(), c.ClickedAt)
	assert.Equal(t, "mobile", *c.DeviceType)
	assert.Equal(t, "Mobile Safari", *c.Browser)
	assert.Equal(t, "DE", *c.Country)
	assert.Equal(t, "Berlin", *c.City)
	assert.Equal(t, "https://news.example", *c.Referrer)
}

func TestProcessor_MissingMetadata(t *testing.T) {
	writer := &fakeWriter{}
	p := NewProcessor(writer, fakeClassifier{}, fakeGeo{}, zap.NewNop(), testProcessorConfig())
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(ClickData{URLID: 1, ShortCode: "nometa01"}))
	require.NoError(t, p.Stop())

	clicks := writer.stored()
	require.Len(t, clicks, 1)
	assert.Nil(t, clicks[0].DeviceType)
	assert.Nil(t, clicks[0].Country)
	assert.False(t, clicks[0].ClickedAt.IsZero())
}

func TestProcessor_RealParser(t *testing.T) {
	parser, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)

	writer := &fakeWriter{}
	p := NewProcessor(writer, parser, nil, zap.NewNop(), testProcessorConfig())
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(ClickData{
		URLID:     1,
		UserAgent: strPtr("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	}))
	require.NoError(t, p.Stop())

	clicks := writer.stored()
	require.Len(t, clicks, 1)
	require.NotNil(t, clicks[0].DeviceType)
	assert.Equal(t, "desktop", *clicks[0].DeviceType)
	assert.Equal(t, "Chrome", *clicks[0].Browser)
}

func TestProcessor_RetriesTransientFailures(t *testing.T) {
	writer := &fakeWriter{failures: 2}
	p := NewProcessor(writer, nil, nil, zap.NewNop(), testProcessorConfig())
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(ClickData{URLID: 7}))
	require.NoError(t, p.Stop())

	assert.Len(t, writer.stored(), 1)
}

func TestProcessor_GivesUpAfterRetries(t *testing.T) {
	writer := &fakeWriter{failures: 10}
	p := NewProcessor(writer, nil, nil, zap.NewNop(), testProcessorConfig())
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(ClickData{URLID: 7}))
	require.NoError(t, p.Stop())

	assert.Empty(t, writer.stored())
	assert.Equal(t, 7, writer.failures)
}

func TestProcessor_DropsWhenQueueFull(t *testing.T) {
	writer := &fakeWriter{block: make(chan struct{})}
	cfg := testProcessorConfig()
	cfg.WorkerCount = 1
	cfg.BufferSize = 1
	p := NewProcessor(writer, nil, nil, zap.NewNop(), cfg)
	require.NoError(t, p.Start())

	// первый клик занимает воркер, второй ложится в буфер
	require.NoError(t, p.SubmitClick(ClickData{URLID: 1}))
	require.Eventually(t, func() bool { return len(p.jobQueue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.SubmitClick(ClickData{URLID: 2}))

	err := p.SubmitClick(ClickData{URLID: 3})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(writer.block)
	require.NoError(t, p.Stop())
	assert.Len(t, writer.stored(), 2)
}

func TestProcessor_StopDrainsQueue(t *testing.T) {
	writer := &fakeWriter{}
	cfg := testProcessorConfig()
	cfg.BufferSize = 100
	p := NewProcessor(writer, nil, nil, zap.NewNop(), cfg)
	require.NoError(t, p.Start())

	for i := 0; i < 50; i++ {
		require.NoError(t, p.SubmitClick(ClickData{URLID: int64(i)}))
	}
	require.NoError(t, p.Stop())

	assert.Len(t, writer.stored(), 50)
}

func TestProcessor_StopTimeout(t *testing.T) {
	writer := &fakeWriter{block: make(chan struct{})}
	cfg := testProcessorConfig()
	cfg.WorkerCount = 1
	cfg.ShutdownTimeout = 20 * time.Millisecond
	p := NewProcessor(writer, nil, nil, zap.NewNop(), cfg)
	require.NoError(t, p.Start())

	require.NoError(t, p.SubmitClick(ClickData{URLID: 1}))
	assert.ErrorIs(t, p.Stop(), ErrStopTimeout)
	assert.Empty(t, writer.stored())
}

func TestProcessor_Lifecycle(t *testing.T) {
	p := NewProcessor(&fakeWriter{}, nil, nil, zap.NewNop(), testProcessorConfig())

	assert.ErrorIs(t, p.SubmitClick(ClickData{URLID: 1}), ErrNotRunning)
	assert.ErrorIs(t, p.Stop(), ErrNotRunning)

	require.NoError(t, p.Start())
	assert.Error(t, p.Start())
	assert.Equal(t, true, p.GetStats()["started"])

	require.NoError(t, p.Stop())
	assert.ErrorIs(t, p.SubmitClick(ClickData{URLID: 1}), ErrNotRunning)
	assert.Error(t, p.Start())
}
