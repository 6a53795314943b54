package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/despertad/wakefolder/internal/alarm"
)

var rruleDay = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// exportICS renders the alarm list as an iCalendar feed: one VEVENT per
// alarm starting at its next occurrence, with a weekly BYDAY rule for
// repeating alarms and an audio VALARM.
func (h *handler) exportICS(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.uc.List(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}

	cal := buildCalendar(alarms, time.Now())

	w.Header().Set("Content-Type", ical.MIMEType)
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
	}
}

func buildCalendar(alarms []alarm.Alarm, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//wakefolder//wakefolder//EN")

	for _, a := range alarms {
		next, ok := a.NextOccurrence(now)
		if !ok {
			continue
		}

		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, fmt.Sprintf("%d@wakefolder", a.ID))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now)
		ev.Props.SetDateTime(ical.PropDateTimeStart, next)
		ev.Props.SetText(ical.PropSummary, fmt.Sprintf("Wake-up %02d:%02d", a.Hour, a.Minute))
		ev.Props.SetText(ical.PropLocation, a.FolderURI)
		if !a.IsActive {
			ev.Props.SetText(ical.PropStatus, "CANCELLED")
		}

		if a.Repeats() {
			ro := rrule.ROption{Freq: rrule.WEEKLY}
			for _, d := range a.Days {
				ro.Byweekday = append(ro.Byweekday, rruleDay[d])
			}
			p := ical.NewProp(ical.PropRecurrenceRule)
			p.Value = ro.RRuleString()
			ev.Props.Set(p)
		}

		va := ical.NewComponent(ical.CompAlarm)
		va.Props.SetText(ical.PropAction, "AUDIO")
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0S"
		va.Props.Set(trigger)
		ev.Children = append(ev.Children, va)

		cal.Children = append(cal.Children, ev.Component)
	}

	return cal
}
