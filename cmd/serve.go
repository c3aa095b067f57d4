package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/midiline/constants"
	"github.com/jsphweid/midiline/midi"
	"github.com/jsphweid/midiline/model"
	"github.com/jsphweid/midiline/score"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const maxBodyBytes = 8 << 20

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetAddr(), "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the encoder and decoder over HTTP",
	Long: `Serves:
  POST /encode  score (JSON or YAML) in, audio/midi out; ?ticks_per_beat=N
  POST /decode  MIDI file in, score out; ?format=yaml, ?chords=true
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(serveAddr)
	},
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(requestLogger)
	router.HandleFunc("/health", HandleHealth).Methods("GET")
	router.HandleFunc("/encode", HandleEncode).Methods("POST")
	router.HandleFunc("/decode", HandleDecode).Methods("POST")
	return cors.Default().Handler(router)
}

func serve(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logrus.WithField("addr", addr).Info("listening")
	return server.ListenAndServe()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start),
		}).Info("request")
	})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

// statusFor maps codec errors to client errors; anything else is a 500.
func statusFor(err error) int {
	var pre *midi.PitchRangeError
	var tre *midi.TimeRangeError
	var mte *midi.MalformedTrackError
	var ufe *midi.UnsupportedFormatError
	switch {
	case errors.As(err, &pre), errors.As(err, &tre), errors.As(err, &mte):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ufe):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.HealthResponse{Status: "ok"})
}

func HandleEncode(w http.ResponseWriter, r *http.Request) {
	cfg := midi.DefaultConfig()
	if v := r.URL.Query().Get("ticks_per_beat"); v != "" {
		tpb, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "ticks_per_beat"))
			return
		}
		cfg.TicksPerBeat = uint16(tpb)
	}
	enc, err := midi.NewEncoder(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := score.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tls, err := doc.Timelines()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := enc.Bytes(tls)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func HandleDecode(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tls, err := midi.Decode(bytes.NewReader(body))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if r.URL.Query().Get("chords") == "true" {
		groupChords(tls)
	}

	format, contentType := score.FormatJSON, "application/json"
	if r.URL.Query().Get("format") == "yaml" {
		format, contentType = score.FormatYAML, "application/yaml"
	}
	data, err := score.Marshal(score.FromTimelines(tls), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
