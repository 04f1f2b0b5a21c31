package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/job"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// Pool is an elastic set of workers reading the job channel. The dispatcher
// adds a worker per signal up to maxWorkers; workers idle for idleTimeout
// retire while more than minWorkers remain.
type Pool struct {
	jobService  *job.Service
	ragService  rag.Service
	stop        chan bool
	wg          *sync.WaitGroup
	count       int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	jobTimeout  time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service, stop chan bool, wg *sync.WaitGroup) *Pool {
	return &Pool{
		jobService:  jobService,
		ragService:  ragService,
		stop:        stop,
		wg:          wg,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		jobTimeout:  config.JobTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 { return atomic.LoadInt64(&p.count) }

func (p *Pool) dispatcher() {
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if p.WorkerCount() < p.maxWorkers {
				p.createWorker()
			}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	n := atomic.AddInt64(&p.count, 1)
	metrics.IncrementWorkerSpawns()
	metrics.IncrementActiveWorkerCount()
	p.logger.Debug("Created new worker", "workerCount", n)
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			atomic.AddInt64(&p.count, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire claims a slot above minWorkers, so concurrent idle workers never
// take the pool below it.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.count)
		if n <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.count, n, n-1) {
			return true
		}
	}
}
