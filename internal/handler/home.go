package handler

import (
	"net/http"
)

// HandleHome describes the API and greets the caller when a valid token is
// presented. Any path other than "/" is a 404.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	body := map[string]any{
		"service": "tripnosis",
		"endpoints": []string{
			"POST /api/auth/register",
			"POST /api/auth/login",
			"POST /api/auth/logout",
			"GET /api/auth/me",
		},
	}
	if user := UserFromContext(r.Context()); user != nil {
		body["user"] = toUserDTO(user)
	}
	writeJSON(w, http.StatusOK, body)
}
