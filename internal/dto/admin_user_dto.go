package dto

// AdminUserListRequest defines filters for listing users.
type AdminUserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Status   string
}

// AdminUserUpdateRequest captures partial update payloads for users.
type AdminUserUpdateRequest struct {
	Name   *string   `json:"name" validate:"omitempty,min=2,max=255"`
	Phone  *string   `json:"phone" validate:"omitempty,min=7,max=32"`
	Status *string   `json:"status" validate:"omitempty,oneof=active suspended"`
	Roles  *[]string `json:"roles" validate:"omitempty,min=1,dive,oneof=voter admin superadmin"`
}

// AdminUserListResponse wraps a paginated user response.
type AdminUserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}
