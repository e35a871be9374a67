package locator

import "errors"

// ErrAmbiguousRouting is returned when multiple=false but more than one
// bucket survives filtering — caller misuse, or an under-specified shard
// key (spec.md §4.1 step 7, §7).
var ErrAmbiguousRouting = errors.New("locator: ambiguous routing")
