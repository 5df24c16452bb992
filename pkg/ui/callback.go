package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Telegram rejects callback data above 64 bytes, so actions are packed
// as short colon-separated fields under a common prefix.
const (
	Prefix             = "sub:"
	MaxCallbackDataLen = 64
)

// Submission browser actions.
const (
	ActionPage    = "pg"
	ActionDelete  = "del"
	ActionConfirm = "cfm"
	ActionCancel  = "cancel"
)

var ErrBadCallback = errors.New("unrecognized callback data")

// Callback is one decoded button press from the submission browser.
type Callback struct {
	Action       string
	Page         int
	SubmissionID uint
}

// PageData encodes a pagination button.
func PageData(page int) string {
	return fmt.Sprintf("%s%s:%d", Prefix, ActionPage, page)
}

// DeleteData encodes the first tap on a delete button; the page rides
// along so the browser can redraw in place.
func DeleteData(submissionID uint, page int) string {
	return fmt.Sprintf("%s%s:%d:%d", Prefix, ActionDelete, submissionID, page)
}

// ConfirmData encodes the second, destructive tap.
func ConfirmData(submissionID uint, page int) string {
	return fmt.Sprintf("%s%s:%d:%d", Prefix, ActionConfirm, submissionID, page)
}

// CancelData encodes backing out of a delete confirmation.
func CancelData(page int) string {
	return fmt.Sprintf("%s%s:%d", Prefix, ActionCancel, page)
}

// Matches reports whether data belongs to the submission browser.
func Matches(data string) bool {
	return strings.HasPrefix(data, Prefix)
}

// Decode parses callback data produced by the encoders above.
func Decode(data string) (Callback, error) {
	if len(data) > MaxCallbackDataLen || !Matches(data) {
		return Callback{}, ErrBadCallback
	}
	fields := strings.Split(strings.TrimPrefix(data, Prefix), ":")

	switch fields[0] {
	case ActionPage, ActionCancel:
		if len(fields) != 2 {
			return Callback{}, ErrBadCallback
		}
		page, err := strconv.Atoi(fields[1])
		if err != nil || page < 0 {
			return Callback{}, ErrBadCallback
		}
		return Callback{Action: fields[0], Page: page}, nil

	case ActionDelete, ActionConfirm:
		if len(fields) != 3 {
			return Callback{}, ErrBadCallback
		}
		id, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil || id == 0 {
			return Callback{}, ErrBadCallback
		}
		page, err := strconv.Atoi(fields[2])
		if err != nil || page < 0 {
			return Callback{}, ErrBadCallback
		}
		return Callback{Action: fields[0], Page: page, SubmissionID: uint(id)}, nil
	}
	return Callback{}, ErrBadCallback
}
