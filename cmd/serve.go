package cmd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/melody"
	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/pipeline"
	"github.com/ludyw21/autokeys/player"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves an HTTP remote control for playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(serveAddr)
	},
}

type controlServer struct {
	player *player.Player
	log    *zap.Logger
}

func serve(addr string) error {
	log := newLogger()
	defer log.Sync()

	srv := &controlServer{
		player: player.New(player.NewLogSender(log), model.DefaultOptions(), model.Callbacks{}, log),
		log:    log,
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/play", srv.handlePlay).Methods("POST")
	router.HandleFunc("/pause", srv.handlePause).Methods("POST")
	router.HandleFunc("/resume", srv.handleResume).Methods("POST")
	router.HandleFunc("/stop", srv.handleStop).Methods("POST")
	router.HandleFunc("/status", srv.handleStatus).Methods("GET")
	router.HandleFunc("/progress", srv.handleStatus).Methods("GET")

	log.Info("control server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, cors.Default().Handler(router))
}

func (s *controlServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	var input model.PlayRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if input.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	req := pipeline.NewRequest(input.Path)
	if input.Strategy != "" {
		strategy, err := keymap.ParseStrategy(input.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Strategy = strategy
	}
	if input.Layout != "" {
		layout, ok := keymap.ByName(input.Layout)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown layout "+input.Layout)
			return
		}
		req.Layout = layout
	}
	if input.Melody != "" {
		mode, err := melody.ParseMode(input.Melody)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.MelodyOnly = true
		req.MelodyCfg.Mode = mode
	}
	if input.Tempo > 0 {
		req.Opts.Tempo = input.Tempo
	}

	events, err := pipeline.Build(req, s.log)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.player.Start(events); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, player.ErrBusy) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	s.writeStatus(w)
}

func (s *controlServer) handlePause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	s.writeStatus(w)
}

func (s *controlServer) handleResume(w http.ResponseWriter, r *http.Request) {
	s.player.Resume()
	s.writeStatus(w)
}

func (s *controlServer) handleStop(w http.ResponseWriter, r *http.Request) {
	s.player.Stop()
	s.writeStatus(w)
}

func (s *controlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w)
}

func (s *controlServer) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.StatusResponse{
		SessionId: s.player.SessionId(),
		State:     s.player.State().String(),
		Progress:  s.player.Progress(),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
