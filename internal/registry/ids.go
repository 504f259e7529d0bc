package registry

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CaregiverPrefix = "CG-"
	ChildPrefix     = "CH-"
)

func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s%06d", prefix, n)
}

// sequenceOf extracts the number from an identifier this registry issued.
// Hand-typed identifiers in other shapes are not counted.
func sequenceOf(prefix, id string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextCaregiverID issues a new caregiver identifier and advances the counter.
func (r *Registry) NextCaregiverID() string {
	r.data.Sequence.Caregiver++
	return FormatID(CaregiverPrefix, r.data.Sequence.Caregiver)
}

func (r *Registry) NextChildID() string {
	r.data.Sequence.Child++
	return FormatID(ChildPrefix, r.data.Sequence.Child)
}

// raiseSequences keeps the counters at or above every identifier in use, so
// a lost or stale meta sheet cannot cause reuse.
func (r *Registry) raiseSequences() {
	for _, c := range r.data.Caregivers {
		if n, ok := sequenceOf(CaregiverPrefix, c.ID); ok && n > r.data.Sequence.Caregiver {
			r.data.Sequence.Caregiver = n
		}
	}
	for _, ch := range r.data.Children {
		if n, ok := sequenceOf(ChildPrefix, ch.ID); ok && n > r.data.Sequence.Child {
			r.data.Sequence.Child = n
		}
	}
}
