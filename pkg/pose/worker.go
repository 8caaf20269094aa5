package pose

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies a worker operation.
type RequestType string

// Worker request types.
const (
	RequestProcessLandmarks RequestType = "PROCESS_LANDMARKS"
	RequestCalculateAngles  RequestType = "CALCULATE_ANGLES"
	RequestFuseEnsemble     RequestType = "FUSE_ENSEMBLE"
	RequestReset            RequestType = "RESET"
	RequestSetConfig        RequestType = "SET_CONFIG"
)

// ResponseType identifies a worker reply.
type ResponseType string

// Worker response types.
const (
	ResponseResult ResponseType = "RESULT"
	ResponseError  ResponseType = "ERROR"
	ResponseReady  ResponseType = "READY"
)

// Request is one message to the worker. ID is caller-chosen and is
// echoed on the response. Reply, when set, receives the response
// directly; otherwise it is delivered on the worker's shared response
// stream.
type Request struct {
	Type      RequestType
	ID        string
	Landmarks []Landmark
	DeltaTime float64
	Ensemble  *EnsembleInput
	Patch     *ConfigPatch
	Reply     chan<- Response
}

// Response is one message from the worker.
type Response struct {
	Type           ResponseType
	ID             string
	Processed      []ProcessedLandmark
	Angles         []JointAngleResult
	Fused          []Landmark
	Err            error
	ProcessingTime time.Duration
}

// ErrWorkerStopped is returned when a request is submitted after the
// worker has shut down.
var ErrWorkerStopped = errors.New("pose: worker stopped")

// ErrWorkerBusy is returned by blocking helpers when the request
// queue is full and the context does not allow waiting.
var ErrWorkerBusy = errors.New("pose: worker busy")

// Worker runs a Processor on its own goroutine, reachable only via
// request/response messages. Requests are handled to completion one
// at a time, so every result is consistent with the processor state
// at the moment it was handled.
//
// The caller owns backpressure: TrySubmit reports false instead of
// queueing when the request channel is full, so a host loop can skip
// a frame rather than grow latency under overload.
type Worker struct {
	processor *Processor
	requests  chan Request
	responses chan Response

	// sendMu gates request submission against shutdown: senders hold
	// the read side while enqueueing, Stop takes the write side before
	// closing the stop channel, so no request can enter the queue
	// after drain has run.
	sendMu  sync.RWMutex
	stopped bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWorker creates a worker around a fresh Processor. queueSize
// bounds the number of outstanding requests.
func NewWorker(config Config, queueSize int) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Worker{
		processor: NewProcessor(config),
		requests:  make(chan Request, queueSize),
		responses: make(chan Response, queueSize+1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the worker goroutine. A READY message is emitted on
// the response stream once the worker is accepting requests.
func (w *Worker) Start() {
	go w.run()
}

// Stop shuts the worker down. In-flight work completes; queued
// requests are answered with ErrWorkerStopped.
func (w *Worker) Stop() {
	w.sendMu.Lock()
	w.stopped = true
	w.sendMu.Unlock()

	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}

// Responses returns the shared response stream. Requests that carry
// their own Reply channel are not delivered here.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// TrySubmit enqueues a request without blocking. It reports false when
// the queue is full or the worker is stopped.
func (w *Worker) TrySubmit(req Request) bool {
	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	if w.stopped {
		return false
	}
	select {
	case w.requests <- req:
		return true
	default:
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)

	w.responses <- Response{Type: ResponseReady}

	for {
		select {
		case <-w.stop:
			w.drain()
			return
		case req := <-w.requests:
			w.deliver(req, w.handle(req))
		}
	}
}

// drain answers queued requests after shutdown so callers waiting on
// reply channels are not abandoned.
func (w *Worker) drain() {
	for {
		select {
		case req := <-w.requests:
			w.deliver(req, Response{Type: ResponseError, ID: req.ID, Err: ErrWorkerStopped})
		default:
			return
		}
	}
}

func (w *Worker) deliver(req Request, resp Response) {
	if req.Reply != nil {
		req.Reply <- resp
		return
	}
	select {
	case w.responses <- resp:
	default:
		// Shared stream consumer is too slow; the frame is stale
		// by the time it would be read anyway.
	}
}

// handle runs one request to completion. A panic inside the processor
// is converted into an ERROR response carrying the request id; it
// never halts the worker.
func (w *Worker) handle(req Request) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				Type:           ResponseError,
				ID:             req.ID,
				Err:            fmt.Errorf("pose: request %s panic: %v", req.ID, r),
				ProcessingTime: time.Since(start),
			}
		}
	}()

	resp = Response{Type: ResponseResult, ID: req.ID}

	switch req.Type {
	case RequestProcessLandmarks:
		resp.Processed = w.processor.ProcessFrame(req.Landmarks, req.DeltaTime)
	case RequestCalculateAngles:
		resp.Angles = w.processor.CalculateJointAngles(req.Landmarks)
	case RequestFuseEnsemble:
		if req.Ensemble == nil {
			resp.Fused = []Landmark{}
		} else {
			resp.Fused = w.processor.FuseEnsemble(*req.Ensemble)
		}
	case RequestReset:
		w.processor.Reset()
	case RequestSetConfig:
		if req.Patch != nil {
			w.processor.Configure(*req.Patch)
		}
	default:
		resp = Response{
			Type: ResponseError,
			ID:   req.ID,
			Err:  fmt.Errorf("pose: unknown request type %q", req.Type),
		}
	}

	resp.ProcessingTime = time.Since(start)
	return resp
}

// submitAndWait sends a request with a private reply channel and
// blocks until the response or context cancellation.
func (w *Worker) submitAndWait(ctx context.Context, req Request) (Response, error) {
	reply := make(chan Response, 1)
	req.Reply = reply
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	w.sendMu.RLock()
	if w.stopped {
		w.sendMu.RUnlock()
		return Response{}, ErrWorkerStopped
	}
	select {
	case w.requests <- req:
		w.sendMu.RUnlock()
	case <-ctx.Done():
		w.sendMu.RUnlock()
		return Response{}, ctx.Err()
	}

	select {
	case resp := <-reply:
		if resp.Type == ResponseError {
			return resp, resp.Err
		}
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// ProcessFrame submits a PROCESS_LANDMARKS request and waits for the
// result.
func (w *Worker) ProcessFrame(ctx context.Context, landmarks []Landmark, dt float64) ([]ProcessedLandmark, error) {
	resp, err := w.submitAndWait(ctx, Request{
		Type:      RequestProcessLandmarks,
		Landmarks: landmarks,
		DeltaTime: dt,
	})
	if err != nil {
		return nil, err
	}
	return resp.Processed, nil
}

// CalculateAngles submits a CALCULATE_ANGLES request and waits for
// the result.
func (w *Worker) CalculateAngles(ctx context.Context, landmarks []Landmark) ([]JointAngleResult, error) {
	resp, err := w.submitAndWait(ctx, Request{
		Type:      RequestCalculateAngles,
		Landmarks: landmarks,
	})
	if err != nil {
		return nil, err
	}
	return resp.Angles, nil
}

// FuseEnsemble submits a FUSE_ENSEMBLE request and waits for the
// result.
func (w *Worker) FuseEnsemble(ctx context.Context, input EnsembleInput) ([]Landmark, error) {
	resp, err := w.submitAndWait(ctx, Request{
		Type:     RequestFuseEnsemble,
		Ensemble: &input,
	})
	if err != nil {
		return nil, err
	}
	return resp.Fused, nil
}

// Reset submits a RESET request and waits for it to complete.
func (w *Worker) Reset(ctx context.Context) error {
	_, err := w.submitAndWait(ctx, Request{Type: RequestReset})
	return err
}

// Configure submits a SET_CONFIG request and waits for it to
// complete.
func (w *Worker) Configure(ctx context.Context, patch ConfigPatch) error {
	_, err := w.submitAndWait(ctx, Request{Type: RequestSetConfig, Patch: &patch})
	return err
}
