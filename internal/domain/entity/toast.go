package entity

// ToastKind classifies a user-visible notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is a transient user-visible notification queued for one view
// session and delivered exactly once.
type Toast struct {
	ID          string    `json:"id"`
	Kind        ToastKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}
