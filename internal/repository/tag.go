package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/model"
)

// attachTags connects the given tag names to a post, creating tags that
// do not exist yet. Uniqueness is case-insensitive (unique index on
// lower(name)); the first-seen spelling of a name wins. Returns the
// canonical names actually attached, duplicates collapsed.
func attachTags(ctx context.Context, tx *sqlx.Tx, postID int64, names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	attached := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if len(attached) >= model.MaxTagsPerPost {
			break
		}

		// Connect-or-create: the DO UPDATE no-op makes RETURNING yield
		// the id for both the insert and the conflict case.
		var tag model.Tag
		err := tx.GetContext(ctx, &tag, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT ((lower(name))) DO UPDATE SET name = tags.name
			RETURNING id, name
		`, name)
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tag.ID)
		if err != nil {
			return nil, fmt.Errorf("attach tag %q: %w", name, err)
		}

		attached = append(attached, tag.Name)
	}

	return attached, nil
}
