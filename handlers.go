package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"envirostream/anomaly"
	"envirostream/chartdata"
	"envirostream/config"
	"envirostream/observability"
	"envirostream/pipeline"
	"envirostream/stats"
	"envirostream/storage"
	"envirostream/stream"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

type server struct {
	cfg  *config.Config
	buf  *storage.Buffer
	hub  *stream.Hub
	pipe *pipeline.Pipeline
	met  *observability.Metrics
	log  *slog.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/readings", s.handleReadings)
	r.Get("/api/readings/latest", s.handleLatest)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/anomalies", s.handleAnomalies)
	r.Get("/api/charts", s.handleCharts)
	r.Get("/stream", s.handleStream)
	r.Get("/ws", s.handleWS)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.met.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *server) handleReadings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.buf.Snapshot())
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, ok := s.buf.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, latest)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stats.Summarize(s.buf.Snapshot()))
}

func (s *server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	field := anomaly.ParseField(r.URL.Query().Get("field"))
	threshold := s.cfg.Anomaly.Threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			threshold = v
		}
	}
	writeJSON(w, anomaly.Detect(s.buf.Snapshot(), field, threshold))
}

func (s *server) handleCharts(w http.ResponseWriter, r *http.Request) {
	snapshot := s.buf.Snapshot()
	anomalies := anomaly.Detect(snapshot, anomaly.FieldTemperature, s.cfg.Anomaly.Threshold)
	writeJSON(w, chartdata.Build(snapshot, anomalies))
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":             "healthy",
		"readings_count":     s.buf.Size(),
		"active_connections": s.hub.Len(),
		"total_readings":     s.pipe.Total(),
		"dropped_deliveries": s.hub.Dropped(),
		"buffer":             s.buf.Stats(),
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}

// handleStream delivers one SSE event per published reading until the
// client disconnects or its subscription is closed.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)
	flusher.Flush()

	for {
		select {
		case reading, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(reading)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: sensor_update\ndata: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS serves the same live feed over a websocket, with ping/pong
// keepalive so dead peers are noticed promptly.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := s.hub.Subscribe()
	gone := make(chan struct{})

	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		s.hub.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		select {
		case reading, open := <-sub.C:
			if !open {
				conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(wsWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(reading); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
