// Package session records finished tracing attempts and renders them as
// side-by-side comparison sheets.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wbrown/tracepad/imageutil"
)

// ErrEmptyImage is returned when a session or sheet is given no image.
var ErrEmptyImage = errors.New("session: empty image")

// Session is one practice attempt: the reference that was traced, the
// drawing that came out of it, and any feedback it received.
type Session struct {
	ID             uuid.UUID
	Timestamp      time.Time
	ReferenceImage []byte // encoded image
	UserDrawing    []byte // encoded image, usually the pad's PNG export
	Feedback       string
}

// New records a session stamped with a fresh random ID and the current time.
func New(ref, drawing []byte, feedback string) (*Session, error) {
	if len(ref) == 0 || len(drawing) == 0 {
		return nil, ErrEmptyImage
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	return &Session{
		ID:             id,
		Timestamp:      time.Now(),
		ReferenceImage: ref,
		UserDrawing:    drawing,
		Feedback:       feedback,
	}, nil
}

// Caption is the label printed under a session's comparison sheet.
func (s *Session) Caption() string {
	return fmt.Sprintf("%s  %s", s.Timestamp.Format("2006-01-02 15:04"), s.ID.String()[:8])
}

// Sheet decodes both images and renders them side by side, captioned with
// the session's time and ID.
func (s *Session) Sheet(opts SheetOptions) ([]byte, error) {
	ref, _, err := imageutil.Decode(s.ReferenceImage)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	drawing, _, err := imageutil.Decode(s.UserDrawing)
	if err != nil {
		return nil, fmt.Errorf("drawing: %w", err)
	}
	if opts.Caption == "" {
		opts.Caption = s.Caption()
	}
	sheet, err := Sheet(ref, drawing, opts)
	if err != nil {
		return nil, err
	}
	return imageutil.EncodePNG(sheet)
}
