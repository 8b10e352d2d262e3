package lot

import "time"

// countdownReference returns the instant the per-lot countdown runs from:
// the last accepted bid, or the moment the lot went active. Every accepted
// bid moves the reference to "now", restarting the full countdown.
func countdownReference(l *Lot) *time.Time {
	if l.LastBidTime != nil {
		return l.LastBidTime
	}
	return l.ActiveStartTime
}

// RemainingSeconds returns how many whole seconds are left on the lot's
// countdown. A lot that has not been activated reports the full timer.
func RemainingSeconds(l *Lot, timerSeconds int, now time.Time) int {
	ref := countdownReference(l)
	if ref == nil {
		return timerSeconds
	}
	elapsed := int(now.Sub(*ref) / time.Second)
	remaining := timerSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether the lot's countdown has run out. It never
// mutates state; the expiration monitor polls it and drives lot
// advancement through the auction engine.
func IsExpired(l *Lot, timerSeconds int, now time.Time) bool {
	ref := countdownReference(l)
	if ref == nil {
		return false
	}
	return now.Sub(*ref) >= time.Duration(timerSeconds)*time.Second
}
