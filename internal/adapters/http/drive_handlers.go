package httpadapter

import "net/http"

func (rt *Router) listDriveFolders(w http.ResponseWriter, r *http.Request, userID string) {
	folders, err := rt.drive.FolderStructure(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": emptyIfNil(folders)})
}
