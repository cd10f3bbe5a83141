// Package jira is a small JIRA Cloud client for building roadmap boards.
//
// It covers the endpoints the board needs: Agile boards and sprints, sprint
// issues, JQL search and fix versions. Responses are cached through an
// [httputil.Cache] and transient failures are retried.
//
// [Client.CurrentIssues] reproduces the delivery board's view of a project:
// the issues of its active sprints plus those parked in special sprints
// (refinement, cadrage), deduplicated and stripped of tests, bugs and
// abandoned work. [ToTasks] converts issues to [board.Task] values and
// [Client.FetchBoard] assembles a complete [board.File] for one PI.
//
// [httputil.Cache]: github.com/matzehuels/roadmap/pkg/httputil.Cache
// [board.Task]: github.com/matzehuels/roadmap/pkg/board.Task
// [board.File]: github.com/matzehuels/roadmap/pkg/board.File
package jira
