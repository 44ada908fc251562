package request

type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type UpdateComplaintStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
}
