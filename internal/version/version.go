// Package version checks GitHub for newer releases of the console so
// the dashboard can surface an update banner.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Current is the release baked into this build. Overridden at build
// time with -ldflags "-X .../internal/version.Current=v1.2.0".
var Current = "0.1.0"

const (
	releaseURL  = "https://api.github.com/repos/%s/%s/releases/latest"
	cacheTTL    = 1 * time.Hour
	httpTimeout = 10 * time.Second
)

type githubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// UpdateInfo is the comparison result served to the dashboard.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
}

// Checker polls the GitHub releases API with a small cache so repeated
// dashboard loads don't hammer the rate limit.
type Checker struct {
	current string
	owner   string
	repo    string
	client  *http.Client
	apiBase string // overridden in tests

	mu     sync.Mutex
	cached *UpdateInfo
	expiry time.Time
}

func NewChecker(current, owner, repo string) *Checker {
	return &Checker{
		current: normalize(current),
		owner:   owner,
		repo:    repo,
		client:  &http.Client{Timeout: httpTimeout},
		apiBase: releaseURL,
	}
}

// Check returns the latest release comparison, cached for an hour. A
// failed fetch falls back to stale cache when one exists.
func (c *Checker) Check() (*UpdateInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Now().Before(c.expiry) {
		info := *c.cached
		return &info, nil
	}

	info, err := c.fetch()
	if err != nil {
		if c.cached != nil {
			stale := *c.cached
			stale.CheckedAt = time.Now()
			return &stale, nil
		}
		return nil, err
	}

	c.cached = info
	c.expiry = time.Now().Add(cacheTTL)
	out := *info
	return &out, nil
}

func (c *Checker) fetch() (*UpdateInfo, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf(c.apiBase, c.owner, c.repo), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "NetworkGuardian/"+c.current)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release info: %w", err)
	}
	defer resp.Body.Close()

	// A repo with no releases yet is up to date, not broken.
	if resp.StatusCode == http.StatusNotFound {
		return c.upToDate(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release info: %w", err)
	}
	if release.Draft || release.Prerelease {
		return c.upToDate(), nil
	}

	latest := normalize(release.TagName)
	return &UpdateInfo{
		CurrentVersion:  c.current,
		LatestVersion:   latest,
		UpdateAvailable: Compare(c.current, latest) < 0,
		ReleaseURL:      release.HTMLURL,
		CheckedAt:       time.Now(),
	}, nil
}

func (c *Checker) upToDate() *UpdateInfo {
	return &UpdateInfo{
		CurrentVersion: c.current,
		LatestVersion:  c.current,
		CheckedAt:      time.Now(),
	}
}

// Compare orders two semantic versions: -1 when a < b, 0 when equal,
// 1 when a > b. Prerelease suffixes sort before the stable release.
func Compare(a, b string) int {
	pa, prea := parse(normalize(a))
	pb, preb := parse(normalize(b))

	for i := 0; i < 3; i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case prea == "" && preb != "":
		return 1
	case prea != "" && preb == "":
		return -1
	case prea < preb:
		return -1
	case prea > preb:
		return 1
	}
	return 0
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	return strings.TrimPrefix(v, "V")
}

// parse splits "1.2.3-beta.1" into numeric parts and the prerelease tag.
func parse(v string) ([3]int, string) {
	var nums [3]int
	pre := ""
	if idx := strings.Index(v, "-"); idx != -1 {
		pre = strings.ToLower(v[idx+1:])
		v = v[:idx]
	}
	parts := strings.Split(v, ".")
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err == nil {
			nums[i] = n
		}
	}
	return nums, pre
}
