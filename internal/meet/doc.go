// Package meet holds the shared vocabulary of a school sports meet dataset:
// grades, genders, students and classes, scheduled events and the lane
// assignments drawn for them. Grade and gender are stored as typed values when
// an event is declared; label parsing only exists for input that arrives as
// free text (legacy schedule entries and previously written dataset files).
package meet
