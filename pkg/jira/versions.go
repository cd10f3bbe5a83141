package jira

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

var versionRe = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// ParseVersion ranks a version name by its first "x.y.z" triple as
// x*10000 + y*100 + z. Names without one rank 0.
func ParseVersion(name string) int {
	m := versionRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	z, _ := strconv.Atoi(m[3])
	return x*10000 + y*100 + z
}

// SortVersions orders versions by [ParseVersion], highest first. Equal
// ranks keep their order.
func SortVersions(versions []ProjectVersion) {
	slices.SortStableFunc(versions, func(a, b ProjectVersion) int {
		return cmp.Compare(ParseVersion(b.Name), ParseVersion(a.Name))
	})
}

// Versions returns the fix versions of the project's stories, each with the
// stories shipped in it, sorted highest version first.
func (c *Client) Versions(ctx context.Context, project string) ([]ProjectVersion, error) {
	if err := rerrors.ValidateProjectKey(project); err != nil {
		return nil, err
	}
	issues, err := c.search(ctx, VersionsJQL(project), "fixVersions,summary,status,issuetype", 500)
	if err != nil {
		return nil, err
	}
	return GroupVersions(issues), nil
}

// GroupVersions collects the fix versions of issues, in first-seen order
// before sorting.
func GroupVersions(issues []Issue) []ProjectVersion {
	byID := make(map[string]int)
	var out []ProjectVersion
	for _, is := range issues {
		vi := VersionIssue{Key: is.Key, Summary: is.Fields.Summary}
		for _, v := range is.Fields.FixVersions {
			if idx, ok := byID[v.ID]; ok {
				out[idx].IssueCount++
				out[idx].Issues = append(out[idx].Issues, vi)
				continue
			}
			byID[v.ID] = len(out)
			out = append(out, ProjectVersion{Version: v, IssueCount: 1, Issues: []VersionIssue{vi}})
		}
	}
	SortVersions(out)
	return out
}

// VersionsInRange returns the project's versions released between start
// and end, both inclusive. Versions without a release date are skipped.
func (c *Client) VersionsInRange(ctx context.Context, project string, start, end time.Time) ([]ProjectVersion, error) {
	all, err := c.Versions(ctx, project)
	if err != nil {
		return nil, err
	}
	return FilterVersions(all, start, end), nil
}

// FilterVersions keeps the versions whose release date is within [start, end].
func FilterVersions(versions []ProjectVersion, start, end time.Time) []ProjectVersion {
	var out []ProjectVersion
	for _, v := range versions {
		if v.ReleaseDate == "" {
			continue
		}
		d, err := board.ParseDate(v.ReleaseDate)
		if err != nil {
			continue
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ToReleases converts versions to board releases. Unscheduled versions get
// the date "TBD".
func ToReleases(versions []ProjectVersion) []board.Release {
	out := make([]board.Release, len(versions))
	for i, v := range versions {
		r := board.Release{ID: v.ID, Version: v.Name, Date: v.ReleaseDate}
		if r.Date == "" {
			r.Date = "TBD"
		}
		for _, is := range v.Issues {
			r.Issues = append(r.Issues, board.ReleaseIssue{Key: is.Key, Summary: is.Summary})
		}
		out[i] = r
	}
	return out
}
