package meet

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade identifies one of the three senior high school years.
type Grade string

const (
	GradeOne   Grade = "高一"
	GradeTwo   Grade = "高二"
	GradeThree Grade = "高三"
)

// Grades lists every grade in the order labels are matched against.
var Grades = []Grade{GradeOne, GradeTwo, GradeThree}

// Valid reports whether g is one of the known grades.
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

func (g Grade) String() string { return string(g) }

// ParseGrade maps a trimmed grade token to a Grade.
func ParseGrade(value string) (Grade, bool) {
	g := Grade(strings.TrimSpace(value))
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// Gender of a student or of an event's competition group.
type Gender string

const (
	Male   Gender = "男"
	Female Gender = "女"
)

// Genders lists genders in label matching order.
var Genders = []Gender{Male, Female}

const (
	maleGroupToken   = "男子组"
	femaleGroupToken = "女子组"
)

// Valid reports whether g is male or female.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

func (g Gender) String() string { return string(g) }

// GroupToken returns the competition group fragment used inside event labels.
func (g Gender) GroupToken() string {
	switch g {
	case Male:
		return maleGroupToken
	case Female:
		return femaleGroupToken
	default:
		return ""
	}
}

// ParseGender accepts the single character form, the group token form and the
// English words.
func ParseGender(value string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(Male), maleGroupToken, "male", "m":
		return Male, true
	case string(Female), femaleGroupToken, "female", "f":
		return Female, true
	default:
		return "", false
	}
}

// ClassLabel renders the display label of class number n in grade g, e.g. 高一3班.
func ClassLabel(g Grade, n int) string {
	return fmt.Sprintf("%s%d班", g, n)
}

// ParseClassLabel splits a label such as 高二12班 into its grade and number.
func ParseClassLabel(label string) (Grade, int, bool) {
	label = strings.TrimSpace(label)
	for _, g := range Grades {
		rest, ok := strings.CutPrefix(label, string(g))
		if !ok {
			continue
		}
		digits, ok := strings.CutSuffix(rest, "班")
		if !ok || digits == "" {
			return "", 0, false
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 {
			return "", 0, false
		}
		return g, n, true
	}
	return "", 0, false
}

// EventLabel composes the display label of an event, e.g. 高一男子组-100米-预赛.
// The round segment is omitted when empty.
func EventLabel(g Grade, gender Gender, discipline, round string) string {
	var b strings.Builder
	b.WriteString(string(g))
	b.WriteString(gender.GroupToken())
	b.WriteString("-")
	b.WriteString(discipline)
	if round = strings.TrimSpace(round); round != "" {
		b.WriteString("-")
		b.WriteString(round)
	}
	return b.String()
}

// ParseLabel recovers grade and gender from free-text event labels by
// substring containment. Grades are tried in Grades order, then the male group
// token before the female one. ok is false unless both were found.
func ParseLabel(label string) (grade Grade, gender Gender, ok bool) {
	for _, g := range Grades {
		if strings.Contains(label, string(g)) {
			grade = g
			break
		}
	}
	switch {
	case strings.Contains(label, maleGroupToken):
		gender = Male
	case strings.Contains(label, femaleGroupToken):
		gender = Female
	}
	return grade, gender, grade != "" && gender != ""
}

// SplitLabel returns the discipline and round segments of a composed label.
// Labels that do not follow the grade-discipline-round layout yield empty strings.
func SplitLabel(label string) (discipline, round string) {
	parts := strings.Split(label, "-")
	switch len(parts) {
	case 2:
		return strings.TrimSpace(parts[1]), ""
	case 3:
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	default:
		return "", ""
	}
}
