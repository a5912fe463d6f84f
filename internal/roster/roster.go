// Package roster builds the student population of a meet, partitioned by
// grade and class, and merges externally supplied roster records into it.
package roster

import (
	"github.com/kingrea/sportsmeet/internal/meet"
)

// Roster is the ordered set of classes for one run. Student IDs come from a
// single counter shared by every class.
type Roster struct {
	classes []meet.ClassRoster
	index   map[string]int
	lastID  int
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{index: make(map[string]int)}
}

// add appends a student to its class, creating the class on first use, and
// returns the stored student.
func (r *Roster) add(grade meet.Grade, number int, name string, gender meet.Gender) meet.Student {
	label := meet.ClassLabel(grade, number)
	pos, ok := r.index[label]
	if !ok {
		r.classes = append(r.classes, meet.ClassRoster{Label: label, Grade: grade, Number: number})
		pos = len(r.classes) - 1
		r.index[label] = pos
	}
	r.lastID++
	student := meet.Student{
		ID:     r.lastID,
		Name:   name,
		Gender: gender,
		Class:  label,
		Grade:  grade,
	}
	r.classes[pos].Students = append(r.classes[pos].Students, student)
	return student
}

// ensureClass registers an empty class so it is counted even without students.
func (r *Roster) ensureClass(grade meet.Grade, number int) {
	label := meet.ClassLabel(grade, number)
	if _, ok := r.index[label]; ok {
		return
	}
	r.classes = append(r.classes, meet.ClassRoster{Label: label, Grade: grade, Number: number})
	r.index[label] = len(r.classes) - 1
}

// Classes returns the classes in build order.
func (r *Roster) Classes() []meet.ClassRoster {
	if r == nil {
		return nil
	}
	out := make([]meet.ClassRoster, len(r.classes))
	copy(out, r.classes)
	return out
}

// Class looks up a class by label.
func (r *Roster) Class(label string) (meet.ClassRoster, bool) {
	if r == nil {
		return meet.ClassRoster{}, false
	}
	pos, ok := r.index[label]
	if !ok {
		return meet.ClassRoster{}, false
	}
	return r.classes[pos], true
}

// ClassCount returns the number of classes.
func (r *Roster) ClassCount() int {
	if r == nil {
		return 0
	}
	return len(r.classes)
}

// Len returns the total number of students.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.classes {
		n += len(c.Students)
	}
	return n
}

// GradeCount returns the number of students in grade g.
func (r *Roster) GradeCount(g meet.Grade) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.classes {
		if c.Grade == g {
			n += len(c.Students)
		}
	}
	return n
}

// Students flattens the roster in class order.
func (r *Roster) Students() []meet.Student {
	if r == nil {
		return nil
	}
	out := make([]meet.Student, 0, r.Len())
	for _, c := range r.classes {
		out = append(out, c.Students...)
	}
	return out
}

// Eligible returns every student of the given grade and gender, in class order.
func (r *Roster) Eligible(g meet.Grade, gender meet.Gender) []meet.Student {
	if r == nil {
		return nil
	}
	var out []meet.Student
	for _, c := range r.classes {
		if c.Grade != g {
			continue
		}
		for _, s := range c.Students {
			if s.Gender == gender {
				out = append(out, s)
			}
		}
	}
	return out
}
