package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// ErrDispatcherClosed is returned when submitting after Close
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Delivery is one newsletter message addressed to one user
type Delivery struct {
	NewsletterID uint
	UserID       uint
	TelegramID   int64
	Title        string
	Message      string
}

// Sender pushes a delivery to the user's chat
type Sender interface {
	Send(ctx context.Context, delivery Delivery) error
}

// LogSender stands in for the Telegram bot API and only records the delivery
type LogSender struct{}

func (LogSender) Send(ctx context.Context, delivery Delivery) error {
	log.WithFields(log.Fields{
		"newsletter_id": delivery.NewsletterID,
		"user_id":       delivery.UserID,
		"telegram_id":   delivery.TelegramID,
		"title":         delivery.Title,
	}).Info("Newsletter delivered")
	return nil
}

// Dispatcher runs deliveries on a fixed pool of workers. Submit never blocks
// the caller; Close waits for every submitted delivery to be attempted.
type Dispatcher struct {
	sender  Sender
	jobs    chan Delivery
	workers sync.WaitGroup
	feeders sync.WaitGroup

	mu     sync.Mutex
	closed bool
	once   sync.Once

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewDispatcher(sender Sender, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender: sender,
		jobs:   make(chan Delivery, workers*4),
	}
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for job := range d.jobs {
		if err := d.sender.Send(context.Background(), job); err != nil {
			d.failed.Add(1)
			log.WithError(err).WithField("user_id", job.UserID).Warn("Newsletter delivery failed")
			continue
		}
		d.delivered.Add(1)
	}
}

// Submit queues a batch of deliveries
func (d *Dispatcher) Submit(batch []Delivery) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.feeders.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.feeders.Done()
		for _, job := range batch {
			d.jobs <- job
		}
	}()
	return nil
}

// Close stops accepting work and drains the queue
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		d.feeders.Wait()
		close(d.jobs)
		d.workers.Wait()
	})
}

// Delivered is the number of successful deliveries so far
func (d *Dispatcher) Delivered() int64 {
	return d.delivered.Load()
}

// Failed is the number of deliveries the sender rejected
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}
