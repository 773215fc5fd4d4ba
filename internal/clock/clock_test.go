package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleep(t *testing.T) {
	start := time.Now()
	Sleep(context.Background(), time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	Sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
