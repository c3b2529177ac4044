package service

import (
	"context"

	"github.com/miniguru-commerce/internal/domain/shared"
	commerce "github.com/miniguru-commerce/internal/service"
)

// Settler settles one queued top-up verification
type Settler interface {
	Settle(ctx context.Context, request *shared.SettlementRequest) error
}

// RequestSettler is the payment operation the worker drives
type RequestSettler interface {
	SettleRequest(ctx context.Context, request *shared.SettlementRequest) (*commerce.SettlementResult, error)
}
