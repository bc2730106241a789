package controllers

import (
	"net/http"

	"github.com/sahyadri-motors/dealerdesk/api/middleware"
	"github.com/sahyadri-motors/dealerdesk/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if branch := middleware.BranchIDFromContext(r.Context()); branch != "" {
			payload["branch_id"] = branch
		}
		if subdealer := middleware.SubdealerIDFromContext(r.Context()); subdealer != "" {
			payload["subdealer_id"] = subdealer
		}
		responses.WriteSuccess(w, payload)
	}
}
