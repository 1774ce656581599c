package dto

// RestoreResponse reports the assignment a restore created.
type RestoreResponse struct {
	AssignmentID uint           `json:"assignment_id"`
	Mapped       map[string]int `json:"mapped"`
}
