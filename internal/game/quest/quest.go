// Package quest maintains the party's quest log.
package quest

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Quest is one quest record. Details are ordered oldest first.
type Quest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Giver       string   `json:"giver,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// Clone returns a deep copy of q.
func (q Quest) Clone() Quest {
	out := q
	out.Details = slices.Clone(q.Details)
	return out
}

// Update appends a detail to a quest, optionally completing it.
type Update struct {
	ID       string `json:"id"`
	Detail   string `json:"detail,omitempty"`
	Complete bool   `json:"complete,omitempty"`
}

// Log holds active and completed quests.
type Log struct {
	Active    []Quest `json:"active,omitempty"`
	Completed []Quest `json:"completed,omitempty"`
}

// Clone returns a deep copy of l.
func (l Log) Clone() Log {
	return Log{Active: cloneQuests(l.Active), Completed: cloneQuests(l.Completed)}
}

func cloneQuests(in []Quest) []Quest {
	if in == nil {
		return nil
	}
	out := make([]Quest, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}

// Find returns the quest with id and whether it is completed.
func (l Log) Find(id string) (q Quest, completed bool, ok bool) {
	if i := indexOf(l.Active, id); i >= 0 {
		return l.Active[i], false, true
	}
	if i := indexOf(l.Completed, id); i >= 0 {
		return l.Completed[i], true, true
	}
	return Quest{}, false, false
}

func indexOf(qs []Quest, id string) int {
	return slices.IndexFunc(qs, func(q Quest) bool { return q.ID == id })
}

// Fold adds new quests, then applies updates in order. A new quest whose id
// is already logged is skipped. An update's detail is appended to the
// matching active or completed quest unless it equals the latest detail; a
// Complete update moves an active quest to Completed. Unknown ids are logged
// and skipped.
//
// Postcondition: l is not modified; folding the same input twice equals
// folding it once.
func (l Log) Fold(added []Quest, updates []Update, logger *zap.Logger) Log {
	out := l.Clone()
	for _, q := range added {
		if q.ID == "" {
			logger.Warn("ignoring new quest without id", zap.String("title", q.Title))
			continue
		}
		if _, _, exists := out.Find(q.ID); exists {
			logger.Debug("quest already logged", zap.String("quest", q.ID))
			continue
		}
		out.Active = append(out.Active, q.Clone())
	}

	for _, u := range updates {
		list := &out.Active
		i := indexOf(out.Active, u.ID)
		if i < 0 {
			list = &out.Completed
			i = indexOf(out.Completed, u.ID)
		}
		if i < 0 {
			logger.Warn("ignoring update for unknown quest", zap.String("quest", u.ID))
			continue
		}
		q := &(*list)[i]
		if d := strings.TrimSpace(u.Detail); d != "" {
			if n := len(q.Details); n == 0 || q.Details[n-1] != d {
				q.Details = append(q.Details, d)
			}
		}
		if u.Complete && list == &out.Active {
			done := *q
			out.Active = slices.Delete(out.Active, i, i+1)
			out.Completed = append(out.Completed, done)
			logger.Debug("quest completed", zap.String("quest", done.ID))
		}
	}
	return out
}
