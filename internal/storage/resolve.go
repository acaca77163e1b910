// ABOUTME: ID and ID-prefix resolution scoped to the owning user.
// ABOUTME: Rows owned by other users resolve exactly like missing rows.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/biosync/internal/models"
)

// resolveID finds the full ID from a prefix among user's rows in table.
// table must be one of the package's own table names.
func resolveID(ctx context.Context, q querier, table, kind string, user models.UserID, idOrPrefix string) (string, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if !isIDPrefix(idOrPrefix) {
		return "", &models.NotFoundError{Kind: kind, ID: idOrPrefix}
	}
	if isFullID(idOrPrefix) {
		return idOrPrefix, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE user_id = ? AND id LIKE ? || '%%'`, table)
	rows, err := q.QueryContext(ctx, query, string(user), idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", kind, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan %s ID: %w", kind, err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", kind, err)
	}

	if len(matches) == 0 {
		return "", &models.NotFoundError{Kind: kind, ID: idOrPrefix}
	}
	if len(matches) > 1 {
		return "", models.Invalid("id", "ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

// isIDPrefix reports whether s could begin a UUID. Anything else, including
// LIKE wildcards, can never name a row.
func isIDPrefix(s string) bool {
	if s == "" || len(s) > 36 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && r != '-' {
			return false
		}
	}
	return true
}
