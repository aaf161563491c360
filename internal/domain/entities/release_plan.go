package entities

// ReleaseState is a state of the release state machine.
type ReleaseState string

const (
	StatePlanned              ReleaseState = "planned"
	StatePreconditionsChecked ReleaseState = "preconditions_checked"
	StateBuilt                ReleaseState = "built"
	StateVersionBumped        ReleaseState = "version_bumped"
	StateCommitted            ReleaseState = "committed"
	StatePushed               ReleaseState = "pushed"
	StatePublished            ReleaseState = "published"
	StateDone                 ReleaseState = "done"
	StateFailed               ReleaseState = "failed"
)

// ReleaseItem is one project of a release with its version transition.
type ReleaseItem struct {
	Project     *Project
	FromVersion string
	ToVersion   string
	Tag         string
	Files       []string // absolute paths written by the version bump

	// Committed is the recovery checkpoint: a durable commit containing ToVersion exists.
	Committed bool
	Published bool
}

// NewReleaseItem creates the item moving project to version, tagged "<name>@<version>".
func NewReleaseItem(project *Project, version string) *ReleaseItem {
	return &ReleaseItem{
		Project:     project,
		FromVersion: project.Version,
		ToVersion:   version,
		Tag:         project.Name + "@" + version,
	}
}

// Released returns a copy of the project carrying the target version.
func (i *ReleaseItem) Released() *Project {
	released := *i.Project
	released.Version = i.ToVersion
	return &released
}

// ReleaseFlags selects which release stages run.
type ReleaseFlags struct {
	DoClean   bool
	DoBuild   bool
	DoTest    bool
	DoGit     bool
	DoPush    bool
	DoPublish bool
	DistTag   string
	Remote    string
	Message   string
}

// ReleasePlan is the ordered list of projects to release plus the stage flags. It is built once
// per release command and consumed stage by stage.
type ReleasePlan struct {
	ID    string
	Items []*ReleaseItem
	ReleaseFlags

	State       ReleaseState
	FailedStage ReleaseState
}

// NewReleasePlan creates a plan in the planned state.
func NewReleasePlan(id string, items []*ReleaseItem, flags ReleaseFlags) *ReleasePlan {
	if flags.DistTag == "" {
		flags.DistTag = "latest"
	}
	if flags.Remote == "" {
		flags.Remote = "origin"
	}
	return &ReleasePlan{ID: id, Items: items, ReleaseFlags: flags, State: StatePlanned}
}

// Projects returns the projects of the plan in plan order.
func (p *ReleasePlan) Projects() []*Project {
	out := make([]*Project, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, item.Project)
	}
	return out
}

// Item returns the release item of the named project.
func (p *ReleasePlan) Item(name string) (*ReleaseItem, bool) {
	for _, item := range p.Items {
		if item.Project.Name == name {
			return item, true
		}
	}
	return nil, false
}

// VersionChange is the version transition of one released project.
type VersionChange struct {
	From string
	To   string
}

// VersionChanges maps every project name of the plan to its version transition.
func (p *ReleasePlan) VersionChanges() map[string]VersionChange {
	out := make(map[string]VersionChange, len(p.Items))
	for _, item := range p.Items {
		out[item.Project.Name] = VersionChange{From: item.FromVersion, To: item.ToVersion}
	}
	return out
}

// Files returns every file written by the version bump, without duplicates, in plan order.
func (p *ReleasePlan) Files() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range p.Items {
		for _, f := range item.Files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// IsCommitted reports whether a durable commit exists for the plan; from then on the plan can no
// longer be aborted cleanly.
func (p *ReleasePlan) IsCommitted() bool {
	for _, item := range p.Items {
		if item.Committed {
			return true
		}
	}
	return false
}

// Fail moves the plan into the failed state for the given stage.
func (p *ReleasePlan) Fail(stage ReleaseState) {
	p.State = StateFailed
	p.FailedStage = stage
}

// PublishedNames returns the names of items already published, in plan order.
func (p *ReleasePlan) PublishedNames() []string {
	var out []string
	for _, item := range p.Items {
		if item.Published {
			out = append(out, item.Project.Name)
		}
	}
	return out
}
