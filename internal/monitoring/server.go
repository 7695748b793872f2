package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SessionCounter reports how many mixed-box sessions are currently open.
type SessionCounter func() int

// MonitoringServer pushes live intake stats to the warehouse floor
// dashboard over WebSocket and serves them as JSON for polling clients.
type MonitoringServer struct {
	db            *pgxpool.Pool
	port          int
	countSessions SessionCounter
	clients       map[*websocket.Conn]bool
	clientsMux    sync.Mutex
	broadcast     chan DashboardStats
}

type DashboardStats struct {
	DatabaseStatus   string  `json:"database_status"`
	ResponseTime     int64   `json:"response_time_ms"`
	TotalRecords     int     `json:"total_records"`
	WholeBoxRecords  int     `json:"whole_box_records"`
	MixedBoxRecords  int     `json:"mixed_box_records"`
	MixedBoxGroups   int     `json:"mixed_box_groups"`
	PendingRecords   int     `json:"pending_records"`
	RecordsToday     int     `json:"records_today"`
	OpenSessions     int     `json:"open_sessions"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryPercent    float64 `json:"memory_percent"`
	DiskPercent      float64 `json:"disk_percent"`
	MemoryUsed       string  `json:"memory_used"`
	MemoryTotal      string  `json:"memory_total"`
	DBSize           string  `json:"db_size"`
	Uptime           string  `json:"uptime"`
	Timestamp        string  `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, port int, countSessions SessionCounter) *MonitoringServer {
	return &MonitoringServer{
		db:            db,
		port:          port,
		countSessions: countSessions,
		clients:       make(map[*websocket.Conn]bool),
		broadcast:     make(chan DashboardStats),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")

	// WebSocket for real-time updates
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.handleBroadcast()
	go ms.pushStats()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("[Monitoring] Intake dashboard running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var whole, mixed, groups, pending, today int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM inventory_records WHERE box_type = 'whole'").Scan(&whole)
	ms.db.QueryRow(ctx, "SELECT count(*) FROM inventory_records WHERE box_type = 'mixed'").Scan(&mixed)
	ms.db.QueryRow(ctx, "SELECT count(DISTINCT mix_box_group_key) FROM inventory_records WHERE mix_box_group_key IS NOT NULL").Scan(&groups)
	ms.db.QueryRow(ctx, "SELECT count(*) FROM inventory_records WHERE status = 'pending'").Scan(&pending)
	ms.db.QueryRow(ctx, "SELECT count(*) FROM inventory_records WHERE created_at >= CURRENT_DATE").Scan(&today)

	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)
	dbSize := formatBytes(uint64(dbSizeBytes))

	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)

	// System metrics for the pod running the intake backend
	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	openSessions := 0
	if ms.countSessions != nil {
		openSessions = ms.countSessions()
	}

	return DashboardStats{
		DatabaseStatus:  dbStatus,
		ResponseTime:    responseTime,
		TotalRecords:    whole + mixed,
		WholeBoxRecords: whole,
		MixedBoxRecords: mixed,
		MixedBoxGroups:  groups,
		PendingRecords:  pending,
		RecordsToday:    today,
		OpenSessions:    openSessions,
		CPUPercent:      cpuPercent,
		MemoryPercent:   memStats.UsedPercent,
		DiskPercent:     diskStats.UsedPercent,
		MemoryUsed:      formatBytes(memStats.Used),
		MemoryTotal:     formatBytes(memStats.Total),
		DBSize:          dbSize,
		Uptime:          formatUptime(uptimeSec),
		Timestamp:       time.Now().Format(time.RFC3339),
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Monitoring] WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for stats := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			err := client.WriteJSON(stats)
			if err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

// pushStats feeds the broadcast loop so connected dashboards refresh
// without polling.
func (ms *MonitoringServer) pushStats() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ms.clientsMux.Lock()
		hasClients := len(ms.clients) > 0
		ms.clientsMux.Unlock()
		if !hasClients {
			continue
		}

		ms.broadcast <- ms.collectStats()
	}
}
