package model

type PlayRequestBody struct {
	Path     string  `json:"path"`
	Strategy string  `json:"strategy"`
	Layout   string  `json:"layout"`
	Melody   string  `json:"melody"`
	Tempo    float64 `json:"tempo"`
}

type StatusResponse struct {
	SessionId string  `json:"session_id"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
