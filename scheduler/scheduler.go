package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"portfolio/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownJob = errors.New("unknown job")

var runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portfolio_scheduler_runs_total",
	Help: "Scheduled job runs by result",
}, []string{"job", "result"})

// Job is a task that runs every Interval
type Job struct {
	Id       string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type entry struct {
	job     Job
	entryId cron.EntryID
	wrapped cron.Job
}

// Scheduler owns the background jobs of the process. It is created once and
// shared by the components that inspect or reset jobs.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]*entry
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

// New registers the jobs. Nothing is scheduled until Start, each job first
// fires one interval after it.
func New(jobs ...Job) *Scheduler {
	logger := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithLogger(logger)),
		entries: make(map[string]*entry, len(jobs)),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}

	// One wrapper per job so a reset keeps the overlap guard of earlier runs
	chain := cron.NewChain(cron.SkipIfStillRunning(logger), cron.Recover(logger))
	for _, job := range jobs {
		if job.Interval <= 0 {
			panic(fmt.Sprintf("scheduler: job %q needs a positive interval", job.Id))
		}
		e := &entry{job: job}
		e.wrapped = chain.Then(cron.FuncJob(func() { s.run(e.job) }))
		s.entries[job.Id] = e
	}

	return s
}

// Start begins firing jobs. Calling it again, or after Stop, has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.ctx.Err() != nil {
		return
	}
	now := s.now()
	for _, e := range s.entries {
		// A job reset before Start keeps its countdown
		if e.entryId == 0 {
			e.entryId = s.cron.Schedule(newIntervalSchedule(e.job.Interval, now), e.wrapped)
		}
	}
	s.cron.Start()
	s.started = true
	log.WithField("jobs", len(s.entries)).Info("Scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.started = false
	log.Info("Scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Status lists every job sorted by id
func (s *Scheduler) Status() []models.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]models.JobStatus, 0, len(s.entries))
	for id, e := range s.entries {
		status := models.JobStatus{
			Id:       id,
			Interval: Describe(e.job.Interval),
		}
		if next := s.cron.Entry(e.entryId).Next; !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Id < statuses[j].Id })
	return statuses
}

// Reset moves the next fire of a job to one interval from now. Later fires
// follow every interval from there.
func (s *Scheduler) Reset(id string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}

	schedule := newIntervalSchedule(e.job.Interval, s.now())
	s.cron.Remove(e.entryId)
	e.entryId = s.cron.Schedule(schedule, e.wrapped)

	log.WithFields(log.Fields{
		"job":      id,
		"next_run": schedule.first,
	}).Info("Job schedule reset")
	return schedule.first, nil
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	log.WithField("job", job.Id).Info("Running scheduled job")

	if err := job.Run(s.ctx); err != nil {
		runsTotal.WithLabelValues(job.Id, "error").Inc()
		log.WithFields(log.Fields{
			"job":   job.Id,
			"error": err,
		}).Error("Scheduled job failed")
		return
	}

	runsTotal.WithLabelValues(job.Id, "success").Inc()
	log.WithFields(log.Fields{
		"job":      job.Id,
		"duration": time.Since(start),
	}).Info("Scheduled job finished")
}

// intervalSchedule fires at first and then every interval after it
type intervalSchedule struct {
	interval time.Duration
	first    time.Time
}

func newIntervalSchedule(interval time.Duration, from time.Time) intervalSchedule {
	return intervalSchedule{interval: interval, first: from.Add(interval).UTC()}
}

func (s intervalSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	elapsed := t.Sub(s.first)
	return s.first.Add((elapsed/s.interval + 1) * s.interval)
}

// Describe renders an interval the way an admin would say it, e.g. "3 days"
func Describe(d time.Duration) string {
	unit := func(n int64, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}

	switch {
	case d <= 0:
		return d.String()
	case d%(24*time.Hour) == 0:
		return unit(int64(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return unit(int64(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return unit(int64(d/time.Minute), "minute")
	case d%time.Second == 0:
		return unit(int64(d/time.Second), "second")
	}
	return d.String()
}

// cronLogger sends the cron engine's logs to logrus
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
