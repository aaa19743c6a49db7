package queries

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
)

// CalendarEncoder writes deadlines as an iCalendar document.
type CalendarEncoder interface {
	Encode(w io.Writer, deadlines []*deadline.Deadline) error
}

type ExportCalendarQuery struct {
	UserID uuid.UUID
}

// ExportCalendarHandler renders every deadline of the user as all-day events.
type ExportCalendarHandler struct {
	deadlines deadline.Repository
	encoder   CalendarEncoder
}

func NewExportCalendarHandler(deadlines deadline.Repository, encoder CalendarEncoder) *ExportCalendarHandler {
	return &ExportCalendarHandler{deadlines: deadlines, encoder: encoder}
}

func (h *ExportCalendarHandler) Handle(ctx context.Context, query ExportCalendarQuery) ([]byte, error) {
	deadlines, err := h.deadlines.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := h.encoder.Encode(&buf, deadlines); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
