package github

import (
	"context"
	"time"
)

// Config holds the connection settings for the GitHub REST API.
type Config struct {
	BaseURL string
	Token   string

	// Performance Settings
	RequestDelay time.Duration
}

// Client is the interface for fetching issue data from GitHub.
type Client interface {
	ListIssues(ctx context.Context, owner, repo, state string, page, perPage int) ([]IssueDTO, error)
	ListComments(ctx context.Context, owner, repo string, number int) ([]CommentDTO, error)
	ListTimeline(ctx context.Context, owner, repo string, number int) ([]TimelineEventDTO, error)
}

// NewClient creates a GitHub client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newRESTClient(cfg)
}
