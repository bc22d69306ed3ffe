// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"
)

// afkSentinel is the stored title for snapshots taken while the screen
// is locked. The NUL prefix cannot occur in a real window title, so no
// real title can ever be mistaken for the away marker. The sentinel is
// rendered without the prefix.
const afkSentinel = "\x00USER_AFK_LOCKED"

// afkLabel is the rendered form of the sentinel.
const afkLabel = "USER_AFK_LOCKED"

// timelineBlock is one run of consecutive snapshots sharing a label.
type timelineBlock struct {
	Start    time.Time
	Duration time.Duration
	Label    string
	AvgAPM   int
	AFK      bool
}

// compressTimeline run-length encodes snapshots into blocks. Snapshots
// must be in ascending timestamp order. Each snapshot's title is
// mapped through labels before comparison, so two raw titles that
// redact to the same label merge into one block. A block's duration
// runs from its first snapshot to the start of the next block; the
// trailing block is still open and runs to now.
//
// AFK snapshots never contribute APM values. A block with no APM
// values averages to 0.
func compressTimeline(snapshots []Snapshot, labels map[string]string, now time.Time) []timelineBlock {
	var blocks []timelineBlock
	var apmValues []int

	flush := func(end time.Time) {
		if len(blocks) == 0 {
			return
		}
		last := &blocks[len(blocks)-1]
		last.Duration = end.Sub(last.Start)
		last.AvgAPM = intMean(apmValues)
	}

	for _, snap := range snapshots {
		label := snap.Title
		if snap.Title == afkSentinel {
			label = afkLabel
		} else if mapped, ok := labels[snap.Title]; ok {
			label = mapped
		}

		if len(blocks) == 0 || blocks[len(blocks)-1].Label != label {
			flush(snap.Timestamp)
			blocks = append(blocks, timelineBlock{
				Start: snap.Timestamp,
				Label: label,
				// AFK is a property of the rendered label, not of the
				// first snapshot: a redaction that happens to produce
				// the away label merges with sentinel rows and must
				// render as one away block.
				AFK: label == afkLabel,
			})
			apmValues = apmValues[:0]
		}
		if snap.Title != afkSentinel {
			apmValues = append(apmValues, snap.APM)
		}
	}
	flush(now)
	return blocks
}

func intMean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum / len(values)
}

// formatDurationCompact renders a duration the way a human scans a
// timeline: seconds below a minute, whole minutes below an hour, then
// hours with the minute remainder only when nonzero.
func formatDurationCompact(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours, remainder := minutes/60, minutes%60
	if remainder == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, remainder)
}
