package constants

// MaxTaskPageSize caps how many tasks a single listing request may return.
// User listings are uncapped.
const MaxTaskPageSize = 100
