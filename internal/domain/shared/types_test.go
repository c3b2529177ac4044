package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", CorrelationID(ctx))
	assert.Equal(t, ctx, WithCorrelationID(ctx, ""))
	assert.Equal(t, "corr-1", CorrelationID(WithCorrelationID(ctx, "corr-1")))
}
