package freshness

import "time"

// SessionPhase partitions the exchange day.
type SessionPhase int

const (
	// PhaseTrading covers the morning and afternoon continuous sessions.
	PhaseTrading SessionPhase = iota
	// PhasePreOpen covers 08:00-09:30 on trading days.
	PhasePreOpen
	// PhasePostClose covers 15:00-18:00 on trading days.
	PhasePostClose
	// PhaseClosed covers nights, the lunch break and weekends.
	PhaseClosed
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseTrading:
		return "trading"
	case PhasePreOpen:
		return "pre_open"
	case PhasePostClose:
		return "post_close"
	default:
		return "closed"
	}
}

// SessionClock answers where "now" falls within the exchange day.
// Sessions are 09:30-11:30 and 13:00-15:00 exchange-local time.
type SessionClock struct {
	loc *time.Location
	now func() time.Time
}

// NewSessionClock creates a clock for the given exchange timezone.
func NewSessionClock(loc *time.Location) *SessionClock {
	return &SessionClock{loc: loc, now: time.Now}
}

// Phase classifies the current moment.
func (c *SessionClock) Phase() SessionPhase {
	t := c.now().In(c.loc)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return PhaseClosed
	}

	m := t.Hour()*60 + t.Minute()
	switch {
	case m >= 9*60+30 && m <= 11*60+30, m >= 13*60 && m <= 15*60:
		return PhaseTrading
	case m >= 8*60 && m < 9*60+30:
		return PhasePreOpen
	case m > 15*60 && m <= 18*60:
		return PhasePostClose
	default:
		return PhaseClosed
	}
}

// InSession reports whether the exchange is currently trading.
func (c *SessionClock) InSession() bool {
	return c.Phase() == PhaseTrading
}
