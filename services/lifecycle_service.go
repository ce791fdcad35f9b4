package services

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"
)

// Saver is the part of a DataContext the lifecycle service drives.
type Saver interface {
	Save() error
	HasPendingChanges() bool
}

type LifecycleServiceInterface interface {
	Start()
	Stop()
	Suspend()
	Terminate()
	ListenForSignals(ctx context.Context, signals ...os.Signal)
}

// LifecycleService flushes the context when the process is about to be
// suspended or to terminate, and optionally on a fixed interval.
type LifecycleService struct {
	saver    Saver
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	isRunning bool
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewLifecycleService returns a service for saver. A zero interval disables
// the autosave loop; Suspend and Terminate work either way.
func NewLifecycleService(saver Saver, interval time.Duration, logger *slog.Logger) *LifecycleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleService{
		saver:    saver,
		interval: interval,
		logger:   logger,
	}
}

func (s *LifecycleService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning || s.interval <= 0 {
		return
	}
	s.isRunning = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.autosave(time.NewTicker(s.interval), s.stop)
}

// Stop ends the autosave loop and waits for it to exit.
func (s *LifecycleService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *LifecycleService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *LifecycleService) autosave(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.saver.HasPendingChanges() {
				continue
			}
			if err := s.saver.Save(); err != nil {
				s.logger.Error("autosave failed", "error", err)
				continue
			}
			s.logger.Debug("autosaved pending changes")
		}
	}
}

// Suspend saves before the process is suspended.
func (s *LifecycleService) Suspend() {
	s.flush("suspend")
}

// Terminate stops autosave and saves before the process exits.
func (s *LifecycleService) Terminate() {
	s.Stop()
	s.flush("terminate")
}

// flush saves synchronously. There is no recovery on these paths, so a
// failure is only logged.
func (s *LifecycleService) flush(reason string) {
	if err := s.saver.Save(); err != nil {
		s.logger.Error("unable to save data context", "reason", reason, "error", err)
		return
	}
	s.logger.Debug("data context flushed", "reason", reason)
}

// ListenForSignals calls Terminate when one of signals arrives. Delivery
// stops when ctx is done.
func (s *LifecycleService) ListenForSignals(ctx context.Context, signals ...os.Signal) {
	if len(signals) == 0 {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
		case sig := <-ch:
			s.logger.Info("received signal, saving", "signal", sig.String())
			s.Terminate()
		}
	}()
}

var _ LifecycleServiceInterface = (*LifecycleService)(nil)
