package dto

// TaskRequest is the create/update body for a task. Deadline is epoch
// milliseconds on the wire; a missing deadline fails validation downstream.
type TaskRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Deadline     *int64 `json:"deadline"`
	Completed    bool   `json:"completed"`
	AssignedUser string `json:"assignedUser"`
}
