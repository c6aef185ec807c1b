package entity

// Student is a club member as stored in the students table.
// Kept minimal; ClubRepository only reads its id.
type Student struct {
	ID   StudentID
	Name string
}

func NewStudent(id StudentID, name string) *Student {
	return &Student{ID: id, Name: name}
}
