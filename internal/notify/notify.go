package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/larkwiot/bookexplorer/internal/metrics"
	"github.com/sirupsen/logrus"
)

var (
	ErrPermissionDenied = errors.New("notification permission denied")
	ErrNotRequested     = errors.New("notification permission not requested")
	ErrSinkFull         = errors.New("notification sink full")
)

type Notification struct {
	Title string
	Body  string
}

type Sink interface {
	Deliver(n Notification) error
}

// Permission decides whether notifications may be shown. It is asked at most
// once per Dispatcher.
type Permission interface {
	Request(ctx context.Context) (bool, error)
}

type PermissionFunc func(ctx context.Context) (bool, error)

func (f PermissionFunc) Request(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Allow returns a fixed answer, used when the answer comes from configuration.
func Allow(granted bool) Permission {
	return PermissionFunc(func(context.Context) (bool, error) { return granted, nil })
}

type Dispatcher struct {
	sink       Sink
	permission Permission

	once    sync.Once
	granted atomic.Bool
	asked   atomic.Bool
	pending sync.WaitGroup
}

func NewDispatcher(sink Sink, permission Permission) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	if permission == nil {
		permission = Allow(true)
	}
	return &Dispatcher{sink: sink, permission: permission}
}

// RequestPermission asks once; later calls return the first answer. A denial
// is final for the life of the dispatcher.
func (d *Dispatcher) RequestPermission(ctx context.Context) error {
	d.once.Do(func() {
		granted, err := d.permission.Request(ctx)
		if err != nil {
			logrus.Warnf("notify: permission request failed: %v", err)
			granted = false
		}
		d.granted.Store(granted)
		d.asked.Store(true)
		if !granted {
			logrus.Info("notify: permission denied for notifications")
		}
	})

	if !d.granted.Load() {
		return ErrPermissionDenied
	}
	return nil
}

func (d *Dispatcher) Granted() bool {
	return d.granted.Load()
}

// Notify schedules delivery and returns immediately. Delivery errors are
// logged and dropped.
func (d *Dispatcher) Notify(title, body string) {
	if !d.asked.Load() {
		metrics.NotificationsTotal.WithLabelValues("unrequested").Inc()
		logrus.Debugf("notify: dropping %q: %v", title, ErrNotRequested)
		return
	}
	if !d.granted.Load() {
		metrics.NotificationsTotal.WithLabelValues("denied").Inc()
		return
	}

	n := Notification{Title: title, Body: body}
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		if err := d.sink.Deliver(n); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			logrus.Warnf("notify: delivering %q failed: %v", n.Title, err)
			return
		}
		metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

type NopSink struct{}

func (NopSink) Deliver(Notification) error { return nil }

// WriterSink prints notifications as a coloured line.
type WriterSink struct {
	lock sync.Mutex
	w    io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Deliver(n Notification) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := fmt.Fprintln(s.w, color.CyanString("🔔 "+n.Title), n.Body)
	return err
}

// ChanSink hands notifications to an event loop without ever blocking.
type ChanSink struct {
	C chan Notification
}

func NewChanSink(size int) *ChanSink {
	return &ChanSink{C: make(chan Notification, size)}
}

func (s *ChanSink) Deliver(n Notification) error {
	select {
	case s.C <- n:
		return nil
	default:
		return ErrSinkFull
	}
}
