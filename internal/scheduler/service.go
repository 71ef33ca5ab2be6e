package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a named recurring task
type Job struct {
	Name     string
	Schedule string
	Run      func() error
}

// Service runs recurring jobs on cron schedules (with seconds)
type Service struct {
	cron *cron.Cron
	jobs []Job
}

// NewService creates a new scheduler service. Overlapping runs of the same
// job are skipped.
func NewService() *Service {
	return &Service{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// AddJob registers a job; it must be called before Start
func (s *Service) AddJob(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() {
		logrus.Infof("Starting scheduled job %s", job.Name)
		if err := job.Run(); err != nil {
			logrus.Errorf("Scheduled job %s failed: %v", job.Name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Jobs returns the registered jobs
func (s *Service) Jobs() []Job {
	return s.jobs
}

// Start begins running registered jobs
func (s *Service) Start() {
	s.cron.Start()
	logrus.Infof("Scheduler started with %d jobs", len(s.jobs))
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
