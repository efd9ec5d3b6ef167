// Package seat parses and formats human seat labels such as "A1" or
// "C12".  A label is a row letter followed by a 1-based seat number.
// Parsing is a pure function so the codec can be exercised in
// isolation; no other package needs to know the label layout.
package seat

import (
	"strconv"
	"strings"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// Seat is a decoded grid coordinate.  Row is 0-based (A=0), Number is
// 1-based, matching how labels read.
type Seat struct {
	Row    int
	Number int
}

// Label renders the canonical string form of the coordinate.
func (s Seat) Label() string {
	return string(rune('A'+s.Row)) + strconv.Itoa(s.Number)
}

// Canonical normalizes a raw label for comparison, storage and
// locking: trimmed and upper-cased.  It does not validate.
func Canonical(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Parse validates a label against an event grid of the given
// dimensions and returns its coordinate.  The row letter is
// upper-cased before any range check, and the suffix must be all
// digits.  Leading zeros are tolerated, so "A01" decodes to the same
// coordinate as "A1"; callers that need one string per physical seat
// must re-render via Label rather than keep the raw input.  On
// failure it returns a *model.InvalidSeatError describing what was
// wrong; it never touches the database or the lock tier.
func Parse(label string, rows, seatsPerRow int) (Seat, error) {
	canon := Canonical(label)
	if len(canon) < 2 {
		return Seat{}, &model.InvalidSeatError{Label: label, Reason: "too short"}
	}
	rowLetter := canon[0]
	digits := canon[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Seat{}, &model.InvalidSeatError{Label: label, Reason: "seat number is not numeric"}
		}
	}
	num, err := strconv.Atoi(digits)
	if err != nil {
		return Seat{}, &model.InvalidSeatError{Label: label, Reason: "seat number is not numeric"}
	}
	row := int(rowLetter) - 'A'
	if row < 0 || row >= rows {
		return Seat{}, &model.InvalidSeatError{Label: label, Reason: "row out of range"}
	}
	if num < 1 || num > seatsPerRow {
		return Seat{}, &model.InvalidSeatError{Label: label, Reason: "seat number out of range"}
	}
	return Seat{Row: row, Number: num}, nil
}
