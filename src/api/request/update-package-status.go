package request

type UpdatePackageStatus struct {
	Status string `json:"status"`
}
