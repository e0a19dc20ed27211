package response

type Process struct {
	Processed bool `json:"processed"`
}
