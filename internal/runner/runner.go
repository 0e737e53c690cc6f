package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrStopped is returned for runs requested after Stop
var ErrStopped = errors.New("task runner stopped")

// Runner executes scheduled suite runs
type Runner struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *log.Logger
	wg       sync.WaitGroup

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	stopping bool
}

// Entry describes one scheduled task
type Entry struct {
	Name     string
	Schedule string
	Next     time.Time
	Prev     time.Time
}

// ScheduleParser parses expressions the way the runner does: seconds field
// first, descriptors such as @hourly allowed
func ScheduleParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// NewRunner creates a new task runner. A task still running when its next
// slot comes up is skipped for that slot.
func NewRunner(registry *TaskRegistry) *Runner {
	return NewRunnerWithLogger(registry, log.New(os.Stdout, "[RUNNER] ", log.LstdFlags))
}

// NewRunnerWithLogger is NewRunner with a custom logger
func NewRunnerWithLogger(registry *TaskRegistry, logger *log.Logger) *Runner {
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		registry: registry,
		logger:   logger,
		entries:  map[string]cron.EntryID{},
	}
}

// Schedule registers every task with cron without starting it
func (r *Runner) Schedule(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, task := range r.registry.All() {
		if _, done := r.entries[task.Name()]; done {
			continue
		}
		r.logger.Printf("Registering task: %s with schedule: %s", task.Name(), task.Schedule())

		id, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", task.Name(), err)
		}
		r.entries[task.Name()] = id
	}
	return nil
}

// Start schedules every task and blocks until ctx is done or the process
// receives SIGINT/SIGTERM
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Println("Starting task runner...")
	if err := r.Schedule(ctx); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Println("Task runner started successfully")

	return r.waitForShutdown(ctx)
}

// RunNow executes a registered task once, outside its schedule
func (r *Runner) RunNow(ctx context.Context, name string) error {
	task, ok := r.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return r.executeTask(ctx, task)
}

// Entries lists scheduled tasks by name with their next run time
func (r *Runner) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.entries))
	for name, id := range r.entries {
		task, _ := r.registry.Get(name)
		e := r.cron.Entry(id)
		out = append(out, Entry{Name: name, Schedule: task.Schedule(), Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) error {
	// wg.Add must not race Stop's wg.Wait
	r.mu.Lock()
	if r.stopping {
		r.mu.Unlock()
		r.logger.Printf("Skipping task %s: runner is stopping", task.Name())
		return ErrStopped
	}
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	taskCtx := ctx
	if timeout := task.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Printf("Executing task: %s", task.Name())

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		r.logger.Printf("Task %s failed after %v: %v", task.Name(), duration, err)
	} else {
		r.logger.Printf("Task %s completed successfully in %v", task.Name(), duration)
	}
	return err
}

// Stop gracefully shuts down the runner
func (r *Runner) Stop() {
	r.logger.Println("Stopping task runner...")

	r.mu.Lock()
	r.stopping = true
	r.mu.Unlock()

	// Stop accepting new tasks
	ctx := r.cron.Stop()

	// Wait for running tasks to complete
	r.wg.Wait()

	r.logger.Println("Task runner stopped")
	<-ctx.Done()
}

// waitForShutdown waits for termination signals
func (r *Runner) waitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		r.logger.Printf("Received signal: %v", sig)
		r.Stop()
		return nil
	case <-ctx.Done():
		r.logger.Println("Context cancelled")
		r.Stop()
		return ctx.Err()
	}
}
