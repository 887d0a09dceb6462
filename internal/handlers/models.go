package handlers

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// ConnectWalletRequest reports the wallet connected in the browser. An empty
// address means the wallet was disconnected.
type ConnectWalletRequest struct {
	Address string `json:"address"`
}
