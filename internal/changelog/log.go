package changelog

import (
	"sort"
	"sync"

	"github.com/dreamware/shardcore/internal/model"
)

// Log tracks the subscriptions, context, and seq counter for one storage's
// change stream. It holds no Change rows itself — a Driver calls Emit
// inside its own mutation transaction and persists the returned rows there,
// so Log and the mutation commit or roll back together.
type Log struct {
	ctx  map[string]interface{}
	subs []model.Subscription
	mu   sync.Mutex
	seq  int64
}

// NewLog returns an empty change log: no subscriptions, seq starting at 0,
// no context set.
func NewLog() *Log {
	return &Log{}
}

// Subscribe adds listener's interest in table if not already present,
// lazily materializing the subscription the first time a listener asks for
// a given table (spec.md §4.6 "Subscription tables"). Returns true if a new
// subscription was added.
func (l *Log) Subscribe(table, listener string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.subs {
		if s.Listener == listener && s.Table == table {
			return false
		}
	}
	l.subs = append(l.subs, model.Subscription{Listener: listener, Table: table})
	return true
}

// Listeners returns the sorted, de-duplicated set of listeners subscribed
// to table, either directly or via the "*" wildcard (spec.md §4.6: "union
// of table == T and table == '*'").
func (l *Log) Listeners(table string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{})
	for _, s := range l.subs {
		if s.Matches(table) {
			seen[s.Listener] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for listener := range seen {
		out = append(out, listener)
	}
	sort.Strings(out)
	return out
}

// HasListeners reports whether any listener covers table — the fast-path
// test every mutating Driver op runs before deciding between the fast path
// and the transactional emit path (spec.md §4.6).
func (l *Log) HasListeners(table string) bool {
	return len(l.Listeners(table)) > 0
}

// SetContext replaces the context map attached to every Change emitted from
// now on, until the next SetContext call (spec.md §4.6, §5). A nil ctx
// resets to an empty map.
func (l *Log) SetContext(ctx map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ctx == nil {
		ctx = map[string]interface{}{}
	}
	l.ctx = ctx
}

// Emit builds one Change row per listener currently subscribed to table,
// each with the next seq value and a copy of the current context. The
// caller is responsible for persisting these rows inside the same
// transaction as the mutation that produced tuple (spec.md §4.6 steps 2-3).
func (l *Log) Emit(table string, action model.ChangeAction, tuple model.Row) []model.Change {
	listeners := l.Listeners(table)
	if len(listeners) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := cloneRow(l.ctx)
	changes := make([]model.Change, 0, len(listeners))
	for _, listener := range listeners {
		l.seq++
		changes = append(changes, model.Change{
			Seq:      l.seq,
			Listener: listener,
			Table:    table,
			Action:   action,
			Tuple:    cloneRow(tuple),
			Context:  ctx,
		})
	}
	return changes
}

func cloneRow(r model.Row) model.Row {
	if r == nil {
		return map[string]interface{}{}
	}
	out := make(model.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
