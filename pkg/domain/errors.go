package domain

import "errors"

// ErrUnknownSession is returned when an operation targets a user without a session.
// Stores return it from Load when the user id cannot be found.
var ErrUnknownSession = errors.New("unknown session")

// ErrInvalidOption is returned when an answer does not index an option of the
// current question, or when the quiz is already completed.
var ErrInvalidOption = errors.New("invalid option")

// ErrNoTraitsRecorded is returned when a result is requested before any answer was given.
var ErrNoTraitsRecorded = errors.New("no traits recorded")

// ErrInvalidQuiz is returned when quiz data fails validation.
var ErrInvalidQuiz = errors.New("invalid quiz")
