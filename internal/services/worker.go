package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/repositories"
)

// Worker indexes completed interviews in the background. Jobs that do not fit
// in the queue stay pending in the database and are picked up by the poller.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(interviewID uuid.UUID)
}

type worker struct {
	repo         repositories.InterviewRepository
	archive      ArchiveService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	// ids that are queued or being indexed
	inFlight sync.Map
}

func NewWorker(
	repo repositories.InterviewRepository,
	archive ArchiveService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		repo:         repo,
		archive:      archive,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting archive worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping archive worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Archive worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks the caller, and an interview
// already queued or being indexed is not queued again.
func (w *worker) EnqueueJob(interviewID uuid.UUID) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue interview %s\n", interviewID)
		return
	default:
	}

	if _, loaded := w.inFlight.LoadOrStore(interviewID, struct{}{}); loaded {
		return
	}

	select {
	case w.jobQueue <- interviewID:
		log.Printf("📥 Interview %s enqueued for indexing\n", interviewID)
	default:
		w.inFlight.Delete(interviewID)
		log.Printf("⚠️  Index queue full, interview %s left for the poller\n", interviewID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case interviewID := <-w.jobQueue:
			if err := w.archive.IndexInterview(ctx, interviewID); err != nil {
				log.Printf("❌ Worker #%d failed to index interview %s: %v\n", workerID, interviewID, err)
			}
			w.inFlight.Delete(interviewID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.repo.FindPendingIndex(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending interviews: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d interviews waiting for indexing\n", len(pending))
			}

			for _, interview := range pending {
				w.EnqueueJob(interview.ID)
			}
		}
	}
}
