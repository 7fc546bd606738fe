package dto

// UserRequest is the create/update body for a user.
type UserRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PendingTasks []string `json:"pendingTasks"`
}
