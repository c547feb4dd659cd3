package importer

import (
	"context"
	"fmt"
	"strings"

	"noircollect/internal/comics"
)

// UpdateResult summarizes one coalescing batch update.
type UpdateResult struct {
	Updated  int `json:"updated"`
	NotFound int `json:"notFound"`
	Total    int `json:"total"`
}

func coalesceUpdateSQL() string {
	var b strings.Builder
	b.WriteString("UPDATE comics SET ")
	for i, col := range comics.PatchColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = COALESCE(?, %s)", col, col)
	}
	b.WriteString(" WHERE title = ? AND issue_number = ? AND publisher = ? AND is_owned = ?")
	return b.String()
}

// CoalesceUpdate applies a batch of sparse updates addressed by natural
// key: supplied fields overwrite, absent fields preserve the stored value.
// This is deliberately a separate path from Run, whose upsert overwrites
// every non-key field unconditionally.
func (p *Pipeline) CoalesceUpdate(ctx context.Context, entries []comics.Entry) (UpdateResult, error) {
	// Last duplicate of a natural key wins, first-seen order preserved.
	byKey := make(map[string]int, len(entries))
	unique := make([]*comics.Entry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		keyRec := e.NaturalKeyRecord()
		key := keyRec.NaturalKey()
		if idx, ok := byKey[key]; ok {
			unique[idx] = e
			continue
		}
		byKey[key] = len(unique)
		unique = append(unique, e)
	}

	res := UpdateResult{Total: len(unique)}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, coalesceUpdateSQL())
	if err != nil {
		return res, fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, e := range unique {
		key := e.NaturalKeyRecord()
		args := append(e.PatchArgs(), key.Title, key.IssueNumber, key.Publisher, key.IsOwned)

		out, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return res, fmt.Errorf("coalesce update: %w", err)
		}
		n, _ := out.RowsAffected()
		res.Updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit update tx: %w", err)
	}

	res.NotFound = res.Total - res.Updated
	return res, nil
}
