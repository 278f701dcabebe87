package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type Pool struct {
	taskQueue   chan Task
	resultQueue chan Result
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	draining    bool
	mu          sync.RWMutex

	// Metrics
	totalTasks     int64
	completedTasks int64
	failedTasks    int64
	startTime      time.Time
}

// NewPool creates a worker pool with the given configuration.
func NewPool(config Config) *Pool {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 5
	}
	if config.TaskQueueSize <= 0 {
		config.TaskQueueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		taskQueue:   make(chan Task, config.TaskQueueSize),
		resultQueue: make(chan Result, config.TaskQueueSize),
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		startTime:   time.Now(),
	}
}

func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool is already started")
	}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.work()
	}

	p.started = true
	return nil
}

func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return fmt.Errorf("worker pool is not started")
	}

	select {
	case p.taskQueue <- task:
		atomic.AddInt64(&p.totalTasks, 1)
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			p.execute(task)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) execute(task Task) {
	start := time.Now()
	taskCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	value, err := task.Run(taskCtx)

	result := Result{
		TaskID:   task.ID,
		Value:    value,
		Error:    err,
		Duration: time.Since(start),
	}

	select {
	case p.resultQueue <- result:
	case <-p.ctx.Done():
	}
}

func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// SetResultHandler drains the result queue into handler, keeping the
// completion counters current. Only the first call installs a drain; later
// calls are ignored so each result reaches exactly one handler.
func (p *Pool) SetResultHandler(handler func(Result)) {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.mu.Unlock()

	go func() {
		for result := range p.resultQueue {
			p.mu.Lock()
			if result.Error != nil {
				p.failedTasks++
			} else {
				p.completedTasks++
			}
			p.mu.Unlock()

			if handler != nil {
				handler(result)
			}
		}
	}()
}

func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.cancel()
	close(p.taskQueue)
	p.wg.Wait()
	close(p.resultQueue)

	p.started = false
}

func (p *Pool) GetStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Stats{
		WorkerCount:    p.workerCount,
		TotalTasks:     atomic.LoadInt64(&p.totalTasks),
		CompletedTasks: p.completedTasks,
		FailedTasks:    p.failedTasks,
		QueueLength:    int64(len(p.taskQueue)),
		Uptime:         time.Since(p.startTime),
		IsRunning:      p.started,
	}
}
