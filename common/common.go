package common

import (
	"time"
)

type Exercise struct {
	Id        string
	UserId    string
	Name      string
	CreatedAt time.Time
}

// ExercisePayload is what a client submits to create an exercise.
type ExercisePayload struct {
	Name string
}

type Workout struct {
	Id        string
	UserId    string
	Day       string
	StartedAt time.Time
}

type ExerciseLog struct {
	Id         string
	WorkoutId  string
	ExerciseId string
	UserId     string
	Date       time.Time
	Weight     float64
	Reps       int
	Sets       int
}

type User struct {
	Id       string
	Name     string
	Email    string
	Password string
}

// ErrorLog is built for console display only and is never stored.
type ErrorLog struct {
	Message   string
	Context   string
	Timestamp time.Time
	Stack     string
}
