package http

import (
	"net/http"

	"churchledger/internal/log"
)

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	resp := Redirect("/dashboard")

	cleared, err := s.Admin.ClearData(r.Context(), actor(r), clearRequest(r.PostForm))
	if msg, ok := validationMessage(err); ok {
		resp.Danger(msg).Write(w, r)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			LogError(r.Context(), "Clear data failed", err, log.OpClear, nil)
		resp.Danger("Error clearing data. Nothing was deleted.").Write(w, r)
		return
	}
	if len(cleared) == 0 {
		resp.Flash(FlashWarning, "No data type selected for deletion.").Write(w, r)
		return
	}
	resp.Success("Deleted: " + titleList(cleared) + ".").Write(w, r)
}
