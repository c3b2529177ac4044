package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/miniguru-commerce/internal/domain/shared"
)

// WorkerPoolSettler bounds how many settlements run against the gateway at once
type WorkerPoolSettler struct {
	base   Settler
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSettler(base Settler, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolSettler, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSettler{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

var _ Settler = (*WorkerPoolSettler)(nil)

// Settle runs the request on a pooled worker and waits for its result
func (s *WorkerPoolSettler) Settle(ctx context.Context, request *shared.SettlementRequest) error {
	resultChan := make(chan error, 1)
	requestCopy := *request

	if err := s.pool.Submit(func() {
		resultChan <- s.base.Settle(ctx, &requestCopy)
	}); err != nil {
		s.logger.Error("Failed to submit settlement to worker pool",
			"transaction_id", request.TransactionID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool; running settlements finish on their own
func (s *WorkerPoolSettler) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolSettler) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolSettler) Capacity() int {
	return s.pool.Cap()
}
