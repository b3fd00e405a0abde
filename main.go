package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"wotrack/internal/audit"
	"wotrack/internal/auth"
	"wotrack/internal/config"
	"wotrack/internal/database"
	"wotrack/internal/handlers/common"
	"wotrack/internal/handlers/production"
	"wotrack/internal/handlers/quality"
	"wotrack/internal/handlers/workorders"
	"wotrack/internal/metrics"
	"wotrack/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Config load failed:", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("DB init failed:", err)
	}
	database.Seed(db)

	hub := websocket.NewHub()
	nextID := func(prefix, table string, digits int) string {
		return database.NextID(db, prefix, table, digits)
	}

	wo := &workorders.Handler{DB: db, Hub: hub, NextID: nextID}
	prod := &production.Handler{DB: db, Hub: hub, NextID: nextID}
	qual := &quality.Handler{DB: db, Hub: hub, NextID: nextID, RepeatWindowDays: cfg.NCRRepeatWindowDays}
	com := &common.Handler{DB: db, LogExport: func(r *http.Request, module, format string, recordCount int) {
		audit.LogAudit(db, hub, r, "exported", "export", module,
			fmt.Sprintf("Exported %d %s records as %s", recordCount, module, format))
	}}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unavailable", 503)
			return
		}
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/ws", hub.Serve)

	// API routes - using a simple router
	mux.HandleFunc("/api/v1/", auth.RequireKey(cfg.APIKeyHash, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")

		switch {
		// Work orders
		case parts[0] == "workorders" && len(parts) == 1 && r.Method == "GET":
			wo.List(w, r)
		case parts[0] == "workorders" && len(parts) == 1 && r.Method == "POST":
			wo.Create(w, r)
		case parts[0] == "workorders" && len(parts) == 2 && r.Method == "GET":
			wo.Get(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 2 && r.Method == "PUT":
			wo.Update(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 2 && r.Method == "DELETE":
			wo.Delete(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "batches" && r.Method == "GET":
			wo.Batches(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "cartons" && r.Method == "GET":
			wo.Cartons(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "readiness" && r.Method == "GET":
			wo.Readiness(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "complete" && r.Method == "POST":
			wo.Complete(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "qc" && r.Method == "GET":
			qual.Gates(w, r, parts[1])
		case parts[0] == "workorders" && len(parts) == 3 && parts[2] == "qc" && r.Method == "PUT":
			qual.UpdateGates(w, r, parts[1])
		case path == "stage-view" && r.Method == "GET":
			wo.StageView(w, r)

		// Production batches
		case parts[0] == "batches" && len(parts) == 1 && r.Method == "GET":
			prod.ListBatches(w, r)
		case parts[0] == "batches" && len(parts) == 1 && r.Method == "POST":
			prod.CreateBatch(w, r)
		case parts[0] == "batches" && len(parts) == 2 && r.Method == "PUT":
			prod.UpdateBatch(w, r, parts[1])

		// Cartons
		case parts[0] == "cartons" && len(parts) == 1 && r.Method == "POST":
			prod.CreateCarton(w, r)
		case parts[0] == "cartons" && len(parts) == 2 && r.Method == "DELETE":
			prod.DeleteCarton(w, r, parts[1])

		// External process moves
		case parts[0] == "external-moves" && len(parts) == 1 && r.Method == "GET":
			prod.ListMoves(w, r)
		case parts[0] == "external-moves" && len(parts) == 1 && r.Method == "POST":
			prod.CreateMove(w, r)
		case parts[0] == "external-moves" && len(parts) == 3 && parts[2] == "receive" && r.Method == "POST":
			prod.ReceiveMove(w, r, parts[1])

		// NCRs
		case parts[0] == "ncrs" && len(parts) == 1 && r.Method == "GET":
			qual.ListNCRs(w, r)
		case parts[0] == "ncrs" && len(parts) == 1 && r.Method == "POST":
			qual.CreateNCR(w, r)
		case parts[0] == "ncrs" && len(parts) == 2 && r.Method == "GET":
			qual.GetNCR(w, r, parts[1])
		case parts[0] == "ncrs" && len(parts) == 2 && r.Method == "PUT":
			qual.UpdateNCR(w, r, parts[1])
		case parts[0] == "ncrs" && len(parts) == 3 && parts[2] == "similar" && r.Method == "GET":
			qual.Similar(w, r, parts[1])

		// Audit and exports
		case path == "audit" && r.Method == "GET":
			com.AuditLog(w, r)
		case path == "export/workorders" && r.Method == "GET":
			com.ExportWorkOrders(w, r)
		case path == "export/readiness" && r.Method == "GET":
			com.ExportReadiness(w, r)

		default:
			http.Error(w, `{"error":"not found"}`, 404)
		}
	}))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("%s listening on %s (db=%s)", cfg.CompanyName, addr, cfg.DBPath)
	log.Fatal(http.ListenAndServe(addr, mux))
}
