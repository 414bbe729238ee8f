package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/dgallion1/docx2dita/internal/convert"
	"github.com/dgallion1/docx2dita/internal/dita"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single document conversion. The finished
// Conversion is retained until TTL eviction so the caller can inspect the
// style snapshot, adjust exclusions, and re-generate.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	opts     convert.Options
	conv     *convert.Conversion
	errors   []string
}

// NewJob creates a queued job holding the raw document bytes.
func NewJob(id, filename string, data []byte, opts convert.Options) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		opts:      opts,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetPhase records a progress phase marker.
func (j *Job) SetPhase(phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// FileData returns the raw document bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Options returns the conversion options captured at submission.
func (j *Job) Options() convert.Options {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.opts
}

// SetConversion stores the finished conversion and drops the raw bytes.
func (j *Job) SetConversion(c *convert.Conversion) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.conv = c
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Conversion returns the finished conversion, or nil while in flight.
func (j *Job) Conversion() *convert.Conversion {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.conv
}

// UpdateExclusions re-runs the exclusion filter and regenerates the archive
// on a completed job. The conversion serializes this against concurrent
// snapshot, report, and archive reads.
func (j *Job) UpdateExclusions(excluded []string) error {
	conv := j.Conversion()
	if conv == nil {
		return errors.New("conversion not finished")
	}
	return conv.Regenerate(excluded)
}

// ArchiveBytes returns the packaged zip, or nil while the job is in flight.
func (j *Job) ArchiveBytes() []byte {
	conv := j.Conversion()
	if conv == nil {
		return nil
	}
	_, zipBytes := conv.Output()
	return zipBytes
}

func (j *Job) lastUpdated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string         `json:"job_id"`
	Status   JobStatus      `json:"status"`
	Phase    string         `json:"phase"`
	Filename string         `json:"filename"`
	Topics   int            `json:"topics,omitempty"`
	Warnings []dita.Warning `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. The conversion's
// output is read outside the job lock: Regenerate reports phases through
// SetPhase, so nesting the two locks here would invert their order.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	snap := JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Errors:   append([]string(nil), j.errors...),
	}
	conv := j.conv
	j.mu.Unlock()

	if conv != nil {
		if res, _ := conv.Output(); res != nil {
			snap.Topics = len(res.Topics)
			snap.Warnings = append([]dita.Warning(nil), res.Warnings...)
		}
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
