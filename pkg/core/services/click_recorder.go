package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/ports"
)

const recordTimeout = 5 * time.Second

// ClickRecorder records clicks in the background so tracking never delays
// navigation. Failures are logged and dropped.
type ClickRecorder struct {
	clicks ports.ClickService
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewClickRecorder(clicks ports.ClickService, logger *zap.Logger) *ClickRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickRecorder{clicks: clicks, logger: logger}
}

// Record returns immediately. The request context is not used because the
// write outlives the request.
func (r *ClickRecorder) Record(linkID, referrer, userAgent, ip string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.clicks.RecordClick(ctx, linkID, referrer, userAgent, ip); err != nil {
			r.logger.Warn("click not recorded", zap.String("link_id", linkID), zap.Error(err))
		}
	}()
}

// Wait blocks until every pending click has been written or dropped.
func (r *ClickRecorder) Wait() {
	r.wg.Wait()
}
