// Package score holds the scoring arithmetic.
package score

import "fmt"

const (
	PenaltyPerHint = 5
	BaseScore      = 200
	// BonusThreshold is the penalty at which the bonus notice appears.
	BonusThreshold = 30
)

// Penalty is the points deducted for hints.
func Penalty(hints int) int {
	if hints < 0 {
		return 0
	}
	return hints * PenaltyPerHint
}

// Base is the time score: one point lost per full elapsed minute.
func Base(elapsedSeconds int) int {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	return max(0, BaseScore-elapsedSeconds/60)
}

// Final is the score shown on the result screen. It is never negative.
func Final(elapsedSeconds, hints int) int {
	return max(0, Base(elapsedSeconds)-Penalty(hints))
}

// FormatElapsed renders seconds as MM:SS. Minutes are not wrapped at 60.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatPenalty renders a penalty the way the scoreboard shows it.
func FormatPenalty(penalty int) string {
	return fmt.Sprintf("-%d점", penalty)
}

// FormatHints renders a hint count.
func FormatHints(hints int) string {
	return fmt.Sprintf("%d회", hints)
}
