// Package calendar renders deadlines as iCalendar documents.
package calendar

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

const productID = "-//studyload//Deadlines//EN"

// PropXEffort carries the estimated effort in hours.
const PropXEffort = "X-STUDYLOAD-EFFORT"

// Encoder writes one all-day VEVENT per deadline.
type Encoder struct {
	now func() time.Time
}

func NewEncoder() *Encoder {
	return &Encoder{now: time.Now}
}

// Encode writes the deadlines as a VCALENDAR. An empty list still produces
// a valid calendar.
func (e *Encoder) Encode(w io.Writer, deadlines []*deadline.Deadline) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", "Deadlines")

	stamp := e.now().UTC()
	if len(deadlines) == 0 {
		// A VCALENDAR needs at least one component.
		cal.Children = append(cal.Children, placeholderTimezone())
	}
	for _, d := range deadlines {
		cal.Children = append(cal.Children, toEvent(d, stamp).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toEvent(d *deadline.Deadline, stamp time.Time) *ical.Event {
	due := d.DueDate()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, d.ID().String()+"@studyload")
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	event.Props.SetDate(ical.PropDateTimeStart, due)
	event.Props.SetDate(ical.PropDateTimeEnd, due.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, d.Title())
	event.Props.SetText(ical.PropDescription, fmt.Sprintf("Estimated effort: %d h\nImportance: %s",
		d.EstimatedEffort(), d.Importance()))
	event.Props.SetText(ical.PropCategories, d.Importance().String())
	event.Props.SetText(ical.PropPriority, strconv.Itoa(icalPriority(d.Importance())))
	event.Props.SetText(ical.PropTransparency, "TRANSPARENT")

	effort := ical.NewProp(PropXEffort)
	effort.Value = strconv.Itoa(d.EstimatedEffort())
	event.Props[PropXEffort] = []ical.Prop{*effort}
	return event
}

// icalPriority maps importance onto RFC 5545 PRIORITY, where 1 is highest.
func icalPriority(i value_objects.Importance) int {
	switch i {
	case value_objects.ImportanceHigh:
		return 1
	case value_objects.ImportanceLow:
		return 9
	default:
		return 5
	}
}

func placeholderTimezone() *ical.Component {
	tz := ical.NewComponent(ical.CompTimezone)
	tz.Props.SetText(ical.PropTimezoneID, "UTC")
	std := ical.NewComponent(ical.CompTimezoneStandard)
	std.Props.SetDateTime(ical.PropDateTimeStart, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	std.Props.SetText(ical.PropTimezoneOffsetFrom, "+0000")
	std.Props.SetText(ical.PropTimezoneOffsetTo, "+0000")
	tz.Children = append(tz.Children, std)
	return tz
}
