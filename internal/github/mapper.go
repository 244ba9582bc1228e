package github

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"ticket-agent/internal/ticket"
)

// issueRefPattern matches "#123" style references in issue text, the
// fallback when the timeline API yields no cross-referenced pull requests.
var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// MapIssue transforms a GitHub issue DTO plus its comments and timeline into
// a domain Ticket. A prior ticket from the store, if present, contributes the
// previously inferred state, score breakdown and state history so re-syncs
// carry the trail forward.
func MapIssue(owner, repo string, issue IssueDTO, comments []CommentDTO, timeline []TimelineEventDTO, prior *ticket.Ticket) ticket.Ticket {
	t := ticket.Ticket{
		ID:             ticket.TicketID(owner, repo, issue.Number),
		RepoIdentifier: fmt.Sprintf("%s/%s", owner, repo),
		IssueNumber:    issue.Number,
		Title:          issue.Title,
		Body:           issue.Body,
		Status:         ticket.Status(issue.State),
		CreatedAt:      issue.CreatedAt,
		UpdatedAt:      issue.UpdatedAt,
		CommentCount:   issue.Comments,
		ReactionsCount: issue.Reactions.TotalCount,
	}

	for _, label := range issue.Labels {
		t.Labels = append(t.Labels, label.Name)
	}
	for _, user := range issue.Assignees {
		t.Assignees = append(t.Assignees, user.Login)
	}
	if issue.Milestone != nil {
		t.Milestone = issue.Milestone.Title
	}

	// last_activity_at is the newest of the issue update and its comments.
	t.LastActivityAt = issue.UpdatedAt
	for _, comment := range comments {
		if comment.CreatedAt.After(t.LastActivityAt) {
			t.LastActivityAt = comment.CreatedAt
		}
	}

	t.LinkedPRs = linkedPRs(issue, timeline)

	if prior != nil {
		t.InferredState = prior.InferredState
		t.ScoreBreakdown = prior.ScoreBreakdown
		t.StateHistory = slices.Clone(prior.StateHistory)
	}

	return t
}

// linkedPRs extracts pull requests referencing the issue from timeline
// cross_referenced events, falling back to "#N" references in the issue text
// when the timeline carries none.
func linkedPRs(issue IssueDTO, timeline []TimelineEventDTO) []ticket.LinkedPR {
	var prs []ticket.LinkedPR
	seen := make(map[int]bool)

	for _, event := range timeline {
		if event.Event != "cross_referenced" || event.Source == nil || event.Source.Issue == nil {
			continue
		}
		src := event.Source.Issue
		if src.PullRequest == nil || seen[src.Number] {
			continue
		}
		seen[src.Number] = true
		prs = append(prs, ticket.LinkedPR{
			Number: src.Number,
			Title:  src.Title,
			State:  src.State,
			Merged: src.PullRequest.MergedAt != nil,
			Draft:  src.Draft,
		})
	}

	if len(prs) > 0 {
		return prs
	}

	// Fallback: body/title references. These carry no state detail, so they
	// count for linkage but not for ready-for-review heuristics.
	text := issue.Body + " " + issue.Title
	for _, match := range issueRefPattern.FindAllStringSubmatch(text, -1) {
		number, err := strconv.Atoi(match[1])
		if err != nil || seen[number] || number == issue.Number {
			continue
		}
		seen[number] = true
		prs = append(prs, ticket.LinkedPR{Number: number})
	}

	return prs
}
