package model

import (
	"errors"
	"fmt"
)

// MalformedInputError is the only fatal per-record error: preprocessing
// cannot proceed because the input is empty or not text. It fails that
// record alone; a batch continues past it.
type MalformedInputError struct {
	RecordID string
	Reason   string
}

func (e *MalformedInputError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("malformed input: %s", e.Reason)
	}
	return fmt.Sprintf("malformed input (%s): %s", e.RecordID, e.Reason)
}

// IsMalformedInput reports whether err is a MalformedInputError anywhere in
// its chain.
func IsMalformedInput(err error) bool {
	var m *MalformedInputError
	return errors.As(err, &m)
}
