// Package events carries non-fatal notices and run progress between the
// analysis core and whatever surface is presenting it.
package events

import "fmt"

// NoticeKind classifies a non-fatal notice.
type NoticeKind string

const (
	// NoticeFallbackUsed signals that probability weighting was requested but
	// booster data was unavailable, so the static rarity table was used.
	NoticeFallbackUsed NoticeKind = "fallback_used"

	// NoticeWeightMismatch signals a sheet whose declared totalWeight disagrees
	// with the computed sum of its card weights.
	NoticeWeightMismatch NoticeKind = "total_weight_mismatch"

	// NoticeZeroWeightSheet signals a sheet whose card weights sum to zero.
	NoticeZeroWeightSheet NoticeKind = "zero_weight_sheet"

	// NoticeUnknownBucket signals that one or more cards could not be keyed by
	// a plan criterion and were placed in the Unknown bucket.
	NoticeUnknownBucket NoticeKind = "unknown_bucket"
)

// Notice is an informational message surfaced alongside results, never thrown.
type Notice struct {
	Kind    NoticeKind
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %s", n.Kind, n.Message)
}

// Noticef builds a Notice with a formatted message.
func Noticef(kind NoticeKind, format string, args ...any) Notice {
	return Notice{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Collector accumulates notices in emission order. The zero value is ready to use.
// Not safe for concurrent use; each run owns its own collector.
type Collector struct {
	notices []Notice
	seen    map[NoticeKind]bool
}

// Add appends a notice unconditionally.
func (c *Collector) Add(n Notice) {
	c.notices = append(c.notices, n)
}

// AddOnce appends a notice only if no notice of the same kind was added before.
// Used for per-run notices like FallbackUsed that must fire once, not per card.
func (c *Collector) AddOnce(n Notice) {
	if c.seen == nil {
		c.seen = make(map[NoticeKind]bool)
	}
	if c.seen[n.Kind] {
		return
	}
	c.seen[n.Kind] = true
	c.notices = append(c.notices, n)
}

// Extend appends a batch of notices.
func (c *Collector) Extend(ns []Notice) {
	c.notices = append(c.notices, ns...)
}

// Notices returns the collected notices in emission order.
func (c *Collector) Notices() []Notice {
	return c.notices
}
