package server

import (
	"net/http"

	"connectrpc.com/connect"
)

const TrackerPath = "/encounters.v1.EncounterTracker/"

const (
	ProcedureGetStatus           = TrackerPath + "GetStatus"
	ProcedureGetLobby            = TrackerPath + "GetLobby"
	ProcedureGetLastMatch        = TrackerPath + "GetLastMatch"
	ProcedureGetEncounterSummary = TrackerPath + "GetEncounterSummary"
	ProcedureGetSettings         = TrackerPath + "GetSettings"
	ProcedureSaveSettings        = TrackerPath + "SaveSettings"
	ProcedureImportHistory       = TrackerPath + "ImportHistory"
	ProcedureListTags            = TrackerPath + "ListTags"
	ProcedureUpsertTag           = TrackerPath + "UpsertTag"
	ProcedureDeleteTag           = TrackerPath + "DeleteTag"
)

// NewTrackerHandler mounts every procedure of s under TrackerPath and returns the path with the
// handler, the same shape connect's generated constructors return.
func NewTrackerHandler(s *TrackerServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ProcedureGetStatus, connect.NewUnaryHandler(ProcedureGetStatus, s.GetStatus, opts...))
	mux.Handle(ProcedureGetLobby, connect.NewUnaryHandler(ProcedureGetLobby, s.GetLobby, opts...))
	mux.Handle(ProcedureGetLastMatch, connect.NewUnaryHandler(ProcedureGetLastMatch, s.GetLastMatch, opts...))
	mux.Handle(ProcedureGetEncounterSummary, connect.NewUnaryHandler(ProcedureGetEncounterSummary, s.GetEncounterSummary, opts...))
	mux.Handle(ProcedureGetSettings, connect.NewUnaryHandler(ProcedureGetSettings, s.GetSettings, opts...))
	mux.Handle(ProcedureSaveSettings, connect.NewUnaryHandler(ProcedureSaveSettings, s.SaveSettings, opts...))
	mux.Handle(ProcedureImportHistory, connect.NewUnaryHandler(ProcedureImportHistory, s.ImportHistory, opts...))
	mux.Handle(ProcedureListTags, connect.NewUnaryHandler(ProcedureListTags, s.ListTags, opts...))
	mux.Handle(ProcedureUpsertTag, connect.NewUnaryHandler(ProcedureUpsertTag, s.UpsertTag, opts...))
	mux.Handle(ProcedureDeleteTag, connect.NewUnaryHandler(ProcedureDeleteTag, s.DeleteTag, opts...))
	return TrackerPath, mux
}
