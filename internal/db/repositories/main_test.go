package repositories

import "errors"

// errDB is a sentinel returned by sqlmock expectations to simulate database
// failures across repository tests.
var errDB = errors.New("database error")
