package usercontext

// Locals keys set by the identity middleware
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUID         = "uid"
)
