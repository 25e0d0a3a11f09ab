package http

import (
	"encoding/json"
	"net/http"
)

// DetailBody é o corpo de erro exposto pela API: {"detail": "..."}.
// O formato é contrato de compatibilidade com os consumidores existentes.
type DetailBody struct {
	Detail string `json:"detail"`
}

// WriteJSON escreve o payload como JSON puro.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteDetail escreve erro no envelope {detail}.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(DetailBody{Detail: detail})
}
