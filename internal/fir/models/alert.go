package models

import "time"

// AlertLevel grades how close a pending record is to its signature deadline.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "NORMAL"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
	AlertExpired  AlertLevel = "EXPIRED"
)

const (
	// WarningThreshold is the remaining time at or below which WARNING applies.
	WarningThreshold = 24 * time.Hour
	// CriticalThreshold is the remaining time at or below which CRITICAL applies.
	CriticalThreshold = 12 * time.Hour
)

var severity = map[AlertLevel]int{
	AlertNormal:   0,
	AlertWarning:  1,
	AlertCritical: 2,
	AlertExpired:  3,
}

// ClassifyRemaining maps a remaining duration to its alert level.
func ClassifyRemaining(remaining time.Duration) AlertLevel {
	switch {
	case remaining <= 0:
		return AlertExpired
	case remaining <= CriticalThreshold:
		return AlertCritical
	case remaining <= WarningThreshold:
		return AlertWarning
	default:
		return AlertNormal
	}
}

// StricterThan reports whether l is a more urgent tier than other.
func (l AlertLevel) StricterThan(other AlertLevel) bool {
	return severity[l] > severity[other]
}

// Notifiable reports whether crossing into l produces an informant alert.
func (l AlertLevel) Notifiable() bool {
	return l != AlertNormal
}

func (l AlertLevel) String() string {
	return string(l)
}
