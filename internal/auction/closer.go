package auction

import "time"

// Closer periodically sweeps for auctions whose end time has passed and
// closes them through the service.
type Closer struct {
	svc      *Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewCloser creates a Closer sweeping at the given interval.
func NewCloser(svc *Service, interval time.Duration) *Closer {
	return &Closer{
		svc:      svc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (c *Closer) Start() {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				c.svc.CloseExpired(now.UTC())
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (c *Closer) Stop() {
	close(c.stop)
	<-c.done
}
