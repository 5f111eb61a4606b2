// Package dedupe holds the shared singleflight group used to deduplicate
// concurrent narration requests. When several watchers trigger narration
// for the same action outcome, only one generation call reaches the
// language-model API; the others wait for its result.
package dedupe

import "golang.org/x/sync/singleflight"

// NarrationGroup deduplicates narration generation keyed by the
// canonicalized outcome (see keys.OutcomeKeyFromNames).
var NarrationGroup singleflight.Group
