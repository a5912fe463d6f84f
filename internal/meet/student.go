package meet

// Student is one member of the roster. IDs are assigned sequentially by the
// roster builder and carry no meaning beyond uniqueness within a run.
type Student struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Class  string `json:"class"`
	Grade  Grade  `json:"grade"`
}

// ClassRoster is the ordered list of students sharing a class label.
type ClassRoster struct {
	Label    string    `json:"class"`
	Grade    Grade     `json:"grade"`
	Number   int       `json:"number"`
	Students []Student `json:"students"`
}

// Count returns the number of students of the given gender in the class.
func (c ClassRoster) Count(gender Gender) int {
	n := 0
	for _, s := range c.Students {
		if s.Gender == gender {
			n++
		}
	}
	return n
}
