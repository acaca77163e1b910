// ABOUTME: Per-user export snapshots stored under time-ordered Charm KV keys.
// ABOUTME: Push, list, fetch, and prune backups of a user's full biosync export.
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
)

// stampLayout sorts lexically in time order.
const stampLayout = "20060102T150405.000000Z"

// Snapshot describes one stored backup.
type Snapshot struct {
	Key   string        `json:"key"`
	User  models.UserID `json:"user"`
	Taken time.Time     `json:"taken"`
	Size  int64         `json:"size_bytes"`
}

// Stamp is the short identifier shown to users and accepted by Fetch.
func (s Snapshot) Stamp() string {
	return s.Taken.UTC().Format(stampLayout)
}

// userPrefix scopes keys to one user. The user is escaped so that no user's
// prefix can be a prefix of another's.
func userPrefix(user models.UserID) string {
	return SnapshotPrefix + url.QueryEscape(string(user)) + ":"
}

func snapshotKey(user models.UserID, taken time.Time) string {
	return userPrefix(user) + taken.UTC().Format(stampLayout)
}

func parseSnapshotKey(key string) (models.UserID, time.Time, error) {
	rest, ok := strings.CutPrefix(key, SnapshotPrefix)
	if !ok {
		return "", time.Time{}, fmt.Errorf("not a snapshot key: %q", key)
	}
	escUser, stamp, ok := strings.Cut(rest, ":")
	if !ok {
		return "", time.Time{}, fmt.Errorf("malformed snapshot key: %q", key)
	}
	user, err := url.QueryUnescape(escUser)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed snapshot user in %q: %w", key, err)
	}
	taken, err := time.Parse(stampLayout, stamp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed snapshot time in %q: %w", key, err)
	}
	return models.UserID(user), taken, nil
}

// Push stores data as a new snapshot for data.User.
func (c *Client) Push(data *storage.ExportData) (*Snapshot, error) {
	if !data.User.Valid() {
		return nil, models.Invalid("user", "export has no user")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	taken := data.ExportedAt.UTC()
	key := snapshotKey(data.User, taken)
	if err := c.set(key, raw); err != nil {
		return nil, fmt.Errorf("push snapshot: %w", err)
	}
	return &Snapshot{Key: key, User: data.User, Taken: taken, Size: int64(len(raw))}, nil
}

// List returns the user's snapshots, newest first.
func (c *Client) List(user models.UserID) ([]Snapshot, error) {
	infos, err := c.scanPrefix(userPrefix(user))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	snaps := make([]Snapshot, 0, len(infos))
	for _, info := range infos {
		u, taken, err := parseSnapshotKey(info.key)
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{Key: info.key, User: u, Taken: taken, Size: info.size})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Taken.After(snaps[j].Taken) })
	return snaps, nil
}

// Fetch loads the snapshot whose stamp starts with stampPrefix. An empty
// prefix selects the newest snapshot.
func (c *Client) Fetch(user models.UserID, stampPrefix string) (*storage.ExportData, error) {
	snaps, err := c.List(user)
	if err != nil {
		return nil, err
	}

	var matches []Snapshot
	for _, s := range snaps {
		if strings.HasPrefix(s.Stamp(), stampPrefix) {
			matches = append(matches, s)
			if stampPrefix == "" {
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil, &models.NotFoundError{Kind: "snapshot", ID: stampPrefix}
	}
	if len(matches) > 1 {
		return nil, models.Invalid("snapshot", "ambiguous prefix %s: matches %d snapshots", stampPrefix, len(matches))
	}

	raw, err := c.get(matches[0].Key)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var data storage.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if data.User != user {
		return nil, errors.New("snapshot belongs to a different user")
	}
	return &data, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were removed.
func (c *Client) Prune(user models.UserID, keep int) (int, error) {
	if keep < 0 {
		return 0, models.Invalid("keep", "must not be negative")
	}
	snaps, err := c.List(user)
	if err != nil {
		return 0, err
	}
	if len(snaps) <= keep {
		return 0, nil
	}

	stale := make([]string, 0, len(snaps)-keep)
	for _, s := range snaps[keep:] {
		stale = append(stale, s.Key)
	}
	if err := c.deleteKeys(stale); err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return len(stale), nil
}
