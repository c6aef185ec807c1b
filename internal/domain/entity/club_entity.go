package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// MaxNumMember is the roster size Join checks against.
const MaxNumMember = 20

var (
	ErrCapacityExceeded = errors.New("club capacity exceeded")
	ErrNotAMember       = errors.New("student is not a member of the club")
)

type ClubID string

type StudentID string

// NewClubID returns a fresh random club identifier.
func NewClubID() ClubID {
	return ClubID(uuid.NewString())
}

// CapacityExceededError is returned by Join when the roster is already over Max.
type CapacityExceededError struct {
	Max int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("a club can have at most %d members", e.Max)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// NotAMemberError is returned by Leave for a student outside the roster.
type NotAMemberError struct {
	StudentID StudentID
}

func (e *NotAMemberError) Error() string {
	return fmt.Sprintf("student %q is not a member of the club", string(e.StudentID))
}

func (e *NotAMemberError) Is(target error) bool {
	return target == ErrNotAMember
}

// Club is the aggregate root for club membership.
// The roster is a set keyed by student id.
type Club struct {
	ID         ClubID
	Name       string
	StudentIDs map[StudentID]struct{}
}

// NewClub builds a club from caller-supplied state. Duplicate ids collapse.
func NewClub(id ClubID, name string, studentIDs ...StudentID) *Club {
	return ReconstructClub(id, name, studentIDs)
}

// ReconstructClub rebuilds a club loaded from storage.
func ReconstructClub(id ClubID, name string, studentIDs []StudentID) *Club {
	roster := make(map[StudentID]struct{}, len(studentIDs))
	for _, sid := range studentIDs {
		roster[sid] = struct{}{}
	}
	return &Club{
		ID:         id,
		Name:       name,
		StudentIDs: roster,
	}
}

// Join adds a student to the roster.
//
// The size check runs against the roster before insertion and only rejects
// once it is strictly above MaxNumMember, so a club can reach
// MaxNumMember+1 members. Joining an existing member is a no-op.
func (c *Club) Join(studentID StudentID) error {
	if len(c.StudentIDs) > MaxNumMember {
		return &CapacityExceededError{Max: MaxNumMember}
	}
	if c.StudentIDs == nil {
		c.StudentIDs = make(map[StudentID]struct{})
	}
	c.StudentIDs[studentID] = struct{}{}
	return nil
}

// Leave removes a student from the roster.
func (c *Club) Leave(studentID StudentID) error {
	if !c.HasMember(studentID) {
		return &NotAMemberError{StudentID: studentID}
	}
	delete(c.StudentIDs, studentID)
	return nil
}

func (c *Club) HasMember(studentID StudentID) bool {
	_, ok := c.StudentIDs[studentID]
	return ok
}

func (c *Club) NumMembers() int {
	return len(c.StudentIDs)
}

// Members returns the roster in ascending order.
func (c *Club) Members() []StudentID {
	out := make([]StudentID, 0, len(c.StudentIDs))
	for sid := range c.StudentIDs {
		out = append(out, sid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
