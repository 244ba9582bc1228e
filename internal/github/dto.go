package github

import "time"

// IssueDTO is a single issue from the GitHub REST v3 issues listing.
// Pull requests also appear in this listing; they carry a pull_request key.
type IssueDTO struct {
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	State       string        `json:"state"`
	Labels      []LabelDTO    `json:"labels"`
	Assignees   []UserDTO     `json:"assignees"`
	Milestone   *MilestoneDTO `json:"milestone"`
	Comments    int           `json:"comments"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Reactions   ReactionsDTO  `json:"reactions"`
	PullRequest *struct{}     `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether this listing entry is actually a PR.
func (i IssueDTO) IsPullRequest() bool {
	return i.PullRequest != nil
}

// LabelDTO is an issue label.
type LabelDTO struct {
	Name string `json:"name"`
}

// UserDTO is a GitHub account reference.
type UserDTO struct {
	Login string `json:"login"`
}

// MilestoneDTO is an issue milestone.
type MilestoneDTO struct {
	Title string `json:"title"`
}

// ReactionsDTO is the reaction rollup attached to an issue.
type ReactionsDTO struct {
	TotalCount int `json:"total_count"`
}

// CommentDTO is a single issue comment; only the timestamp matters for
// last-activity computation.
type CommentDTO struct {
	CreatedAt time.Time `json:"created_at"`
}

// TimelineEventDTO is one entry of the issue timeline. Cross-referenced
// events carry the source issue/PR that mentioned this issue.
type TimelineEventDTO struct {
	Event  string     `json:"event"`
	Source *SourceDTO `json:"source,omitempty"`
}

// SourceDTO wraps the referencing entity of a cross_referenced event.
type SourceDTO struct {
	Issue *SourceIssueDTO `json:"issue,omitempty"`
}

// SourceIssueDTO is the issue or PR behind a timeline source.
type SourceIssueDTO struct {
	Number      int                `json:"number"`
	Title       string             `json:"title"`
	State       string             `json:"state"`
	Draft       bool               `json:"draft"`
	PullRequest *PullRequestRefDTO `json:"pull_request,omitempty"`
}

// PullRequestRefDTO marks a source issue as a pull request.
type PullRequestRefDTO struct {
	MergedAt *time.Time `json:"merged_at"`
}
