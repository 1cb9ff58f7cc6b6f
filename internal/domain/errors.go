package domain

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrNoQuestions indicates every question source came back empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidDifficulty is returned for difficulties outside easy, medium, hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrQuestionIndexOutOfRange indicates an answer for a question the session does not have.
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	// ErrInvalidOption indicates a selected option outside the question's options.
	ErrInvalidOption = errors.New("invalid option index")
	// ErrAlreadyAnswered is returned when the same question is answered twice.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrMalformedQuestion marks a question record that cannot enter the selection pool.
	ErrMalformedQuestion = errors.New("malformed question record")
)
