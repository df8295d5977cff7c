package handler

import (
	"fmt"
	"net/http"
	"strings"
)

const defaultGreetingName = "Christ's Faithful"

type welcomeResponse struct {
	Message string `json:"message"`
}

type greetingResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (h *Handlers) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, welcomeResponse{
		Message: "Hello, Most welcomed User of Parish Management System application !",
	})
}

func (h *Handlers) Greet(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = defaultGreetingName
	}
	writeJSON(w, http.StatusOK, greetingResponse{
		Message: fmt.Sprintf("Greetings, %s! Yezu Akuzwe iteka ryose.", name),
		Name:    name,
	})
}
