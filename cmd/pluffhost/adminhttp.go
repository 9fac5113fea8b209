package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pluffgo/pluffgo/pkg/pluff"
)

// adminServer is a small read-mostly admin HTTP surface over a pluff.Context:
// a health check and a handful of JSON status endpoints. Grounded on
// corrreia-gostrike/internal/modules/http/http.go's registerBuiltinRoutes
// (stdlib net/http, manual JSON encoding, no third-party router — gostrike's
// own Router type is likewise stdlib-only, so there is no ecosystem router
// to pull in here either).
type adminServer struct {
	ctx *pluff.Context
	mux *http.ServeMux
}

func newAdminServer(pctx *pluff.Context) *adminServer {
	s := &adminServer{ctx: pctx, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/scan", s.handleScan)
	s.mux.HandleFunc("GET /plugins", s.handlePlugins)
	s.mux.HandleFunc("GET /plugins/{id}", s.handlePluginByID)
	s.mux.HandleFunc("POST /plugins/{id}/start", s.handlePluginStart)
	s.mux.HandleFunc("POST /plugins/{id}/stop", s.handlePluginStop)
	return s
}

func (s *adminServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *adminServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *adminServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	info := pluff.GetImplementationInfo()
	writeJSON(w, http.StatusOK, map[string]any{
		"release_version": info.ReleaseVersion,
		"api_version":     info.APIVersion,
		"started_plugins": s.ctx.StartedPlugins(),
	})
}

func (s *adminServer) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	infos := s.ctx.ListInfo()
	out := make([]map[string]any, len(infos))
	for i, info := range infos {
		out[i] = infoJSON(info)
		s.ctx.ReleaseInfo(info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "plugins": out})
}

func (s *adminServer) handlePluginByID(w http.ResponseWriter, r *http.Request) {
	info, ok := s.ctx.GetInfo(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "plug-in not registered"})
		return
	}
	defer s.ctx.ReleaseInfo(info)
	writeJSON(w, http.StatusOK, infoJSON(info))
}

func (s *adminServer) handlePluginStart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ctx.Start(r.Context(), id); err != nil {
		writeJSON(w, lifecycleErrStatus(err), map[string]any{"error": err.Error()})
		return
	}
	st, _ := s.ctx.State(id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": st.String()})
}

func (s *adminServer) handlePluginStop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ctx.Stop(r.Context(), id); err != nil {
		writeJSON(w, lifecycleErrStatus(err), map[string]any{"error": err.Error()})
		return
	}
	st, _ := s.ctx.State(id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": st.String()})
}

// lifecycleErrStatus maps a pluff framework error's Kind (§7) to a status
// code: unknown plug-in id is a 404, everything else (dependency failure,
// runtime load failure, invalid invocation) is a 409 — the request was
// understood but the context's current state rejects it.
func lifecycleErrStatus(err error) int {
	if kind, ok := pluff.ErrorKind(err); ok && kind == pluff.KindUnknown {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func infoJSON(info pluff.Info) map[string]any {
	return map[string]any{
		"id":       info.Descriptor.ID,
		"version":  info.Descriptor.Version.String(),
		"state":    info.State.String(),
		"provider": info.Descriptor.Provider,
	}
}

func (s *adminServer) handleScan(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctx.Scan(r.Context(), pluff.ScanUpgrade|pluff.ScanRestartActive)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	errs := make(map[string]string, len(result.Errors))
	for id, scanErr := range result.Errors {
		errs[id] = scanErr.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"installed": result.Installed,
		"upgraded":  result.Upgraded,
		"skipped":   result.Skipped,
		"errors":    errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
