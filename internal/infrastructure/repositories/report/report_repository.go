package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/monorepo/internal/domain/entities"
	"github.com/rios0rios0/monorepo/internal/domain/repositories"
)

// Document is the YAML layout of a release report.
type Document struct {
	ID          string    `yaml:"id"`
	State       string    `yaml:"state"`
	FailedStage string    `yaml:"failed_stage,omitempty"`
	DistTag     string    `yaml:"dist_tag"`
	Remote      string    `yaml:"remote"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Items       []Item    `yaml:"items"`
}

// Item is one released project in a report.
type Item struct {
	Name        string `yaml:"name"`
	FromVersion string `yaml:"from"`
	ToVersion   string `yaml:"to"`
	Tag         string `yaml:"tag,omitempty"`
	Committed   bool   `yaml:"committed"`
	Published   bool   `yaml:"published"`
}

// ReportRepository implements repositories.ReportRepository as a YAML file.
type ReportRepository struct {
	fs  afero.Fs
	now func() time.Time
}

var _ repositories.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates a report writer over the given filesystem.
func NewReportRepository(fs afero.Fs) *ReportRepository {
	return &ReportRepository{fs: fs, now: time.Now}
}

// Write serializes the plan into path, creating parent directories.
func (r *ReportRepository) Write(path string, plan *entities.ReleasePlan) error {
	doc := NewDocument(plan, r.now().UTC())
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err = r.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err = afero.WriteFile(r.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// NewDocument converts a plan into its report layout.
func NewDocument(plan *entities.ReleasePlan, at time.Time) Document {
	doc := Document{
		ID:          plan.ID,
		State:       string(plan.State),
		FailedStage: string(plan.FailedStage),
		DistTag:     plan.DistTag,
		Remote:      plan.Remote,
		GeneratedAt: at,
		Items:       make([]Item, 0, len(plan.Items)),
	}
	for _, item := range plan.Items {
		doc.Items = append(doc.Items, Item{
			Name:        item.Project.Name,
			FromVersion: item.FromVersion,
			ToVersion:   item.ToVersion,
			Tag:         item.Tag,
			Committed:   item.Committed,
			Published:   item.Published,
		})
	}
	return doc
}
