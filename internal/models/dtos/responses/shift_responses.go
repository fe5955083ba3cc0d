package responses

type ShiftCreatedResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ShiftSeriesCreatedResponse struct {
	IDs     []int64 `json:"ids"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
}

type ShiftValidatedResponse struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	ValidatedBy string `json:"validated_by"`
}

type ShiftPublishedResponse struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	PublishedBy string `json:"published_by"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CommitmentCancelledResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CurrentUserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Credits  int    `json:"credits"`
	Source   string `json:"source"`
}

type RolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type PermissionCheckResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
}
