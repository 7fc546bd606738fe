package dto

// Envelope is the uniform response shape. Data is null on errors, except for
// assignment conflicts, which carry the offending task id.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
