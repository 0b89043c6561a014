package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adinote/adinote/internal/model"
)

// Processor processes one dictation; implemented by pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, visit model.RawVisit, mode model.Mode) (*model.VisitRecord, error)
}

// VisitJob processes one dictation through the pipeline.
type VisitJob struct {
	Visit     model.RawVisit
	Mode      model.Mode
	Processor Processor
}

// Execute runs the job. A failed record carries its error in the result;
// it never takes the rest of the batch down with it.
func (j *VisitJob) Execute(ctx context.Context) Result {
	rec, err := j.Processor.Process(ctx, j.Visit, j.Mode)
	return &VisitResult{
		RecordID: j.Visit.RecordID,
		Record:   rec,
		Error:    err,
	}
}

// VisitResult is the outcome of one dictation.
type VisitResult struct {
	RecordID string
	Record   *model.VisitRecord
	Error    error
}

// GetError returns the error, nil on success.
func (r *VisitResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many dictations concurrently. The pipeline's tables
// are read-only, so the same Processor is shared by every worker.
type BatchProcessor struct {
	processor   Processor
	mode        model.Mode
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(processor Processor, mode model.Mode, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		mode:        mode,
		concurrency: concurrency,
	}
}

// ProcessVisits processes the given dictations concurrently.
func (b *BatchProcessor) ProcessVisits(ctx context.Context, visits []model.RawVisit) []*VisitResult {
	if len(visits) == 0 {
		return []*VisitResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, visit := range visits {
		pool.Submit(&VisitJob{
			Visit:     visit,
			Mode:      b.mode,
			Processor: b.processor,
		})
	}

	results := pool.Wait()

	visitResults := make([]*VisitResult, len(results))
	for i, result := range results {
		visitResults[i] = result.(*VisitResult)
	}

	return visitResults
}

// ProcessDir reads every .txt dictation in a directory (one record per
// file, filename stem as record id) and processes them concurrently.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir, operatorRole string) ([]*VisitResult, error) {
	visits, err := ReadVisitsFromDir(dir, operatorRole)
	if err != nil {
		return nil, fmt.Errorf("read visits: %w", err)
	}

	return b.ProcessVisits(ctx, visits), nil
}

// ReadVisitsFromDir loads raw dictations from dir, sorted by filename for
// deterministic batch order.
func ReadVisitsFromDir(dir, operatorRole string) ([]model.RawVisit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var visits []model.RawVisit
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		visits = append(visits, model.RawVisit{
			RecordID:     strings.TrimSuffix(entry.Name(), ".txt"),
			Text:         string(data),
			OperatorRole: operatorRole,
		})
	}

	sort.Slice(visits, func(i, j int) bool { return visits[i].RecordID < visits[j].RecordID })

	return visits, nil
}
