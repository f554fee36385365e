package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"btc-command-center/internal/book"
	"btc-command-center/internal/cache"
	"btc-command-center/internal/config"
	"btc-command-center/internal/market"
	"btc-command-center/internal/metrics"
	"btc-command-center/internal/state"
	"btc-command-center/internal/valuation"
)

type HTTPServer struct {
	cfg    config.Config
	st     *state.State
	mkt    *market.Client
	cache  *cache.TTLCache
	hub    *hub
	log    *slog.Logger
	mux    *http.ServeMux
	webDir string
}

func NewHTTPServer(cfg config.Config, st *state.State, mkt *market.Client, c *cache.TTLCache, reg *prometheus.Registry, logger *slog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:    cfg,
		st:     st,
		mkt:    mkt,
		cache:  c,
		hub:    newHub(logger),
		log:    logger,
		mux:    http.NewServeMux(),
		webDir: "./web",
	}
	s.routes(reg)
	go s.hub.run()
	return s
}

func (s *HTTPServer) Router() http.Handler { return s.mux }

// --------- WS broadcasts ----------

func (s *HTTPServer) BroadcastStatus() {
	venue, pair := s.st.Book()
	msg := map[string]any{
		"reachable":   s.st.Reachable(),
		"venue":       venue,
		"pair":        pair,
		"lastRefresh": s.st.LastRefresh().UTC().Format(time.RFC3339),
	}
	s.hub.broadcast <- marshalWS("status", msg)
}

func (s *HTTPServer) BroadcastBook(venue, pair string, bk book.Book) {
	rows := s.st.DepthRows()
	s.hub.broadcast <- marshalWS("book", map[string]any{
		"venue":       venue,
		"pair":        pair,
		"bids":        book.Top(bk.Bids, rows),
		"asks":        book.Top(bk.Asks, rows),
		"bidNotional": book.TotalNotional(bk.Bids),
		"askNotional": book.TotalNotional(bk.Asks),
	})
}

func (s *HTTPServer) BroadcastError(msg string) {
	s.hub.broadcast <- marshalWS("error", map[string]string{"message": msg})
}

// PushSnapshot refreshes the active venue's order book through the cache
// and broadcasts it with a status frame. Fetch failures become an inline
// error frame, never a crash.
func (s *HTTPServer) PushSnapshot(ctx context.Context) {
	venueStr, pair := s.st.Book()
	venue, err := market.ParseVenue(venueStr)
	if err != nil {
		s.BroadcastError(err.Error())
		return
	}
	bk, err := s.mkt.OrderBook(ctx, venue, pair)
	if err != nil {
		s.st.SetReachable(false)
		s.BroadcastStatus()
		s.BroadcastError("order book unavailable: " + err.Error())
		return
	}
	s.st.SetReachable(true)
	s.st.MarkRefreshed(time.Now())
	s.BroadcastStatus()
	s.BroadcastBook(venueStr, pair, bk)
}

// --------- Routes ----------

func (s *HTTPServer) routes(reg *prometheus.Registry) {
	// SPA
	s.mux.HandleFunc("/", s.serveIndex)
	s.mux.HandleFunc("/index.html", s.serveIndex)
	s.mux.HandleFunc("/app.js", s.serveAsset("app.js", "text/javascript; charset=utf-8"))
	s.mux.HandleFunc("/styles.css", s.serveAsset("styles.css", "text/css; charset=utf-8"))

	// WS
	s.mux.HandleFunc("/ws", s.hub.serveWS)

	// Observability
	s.mux.Handle("/metrics", metrics.Handler(reg))

	// API
	s.handle("/api/health", s.apiHealth)
	s.handle("/api/config", s.apiConfig)
	s.handle("/api/price", s.apiPrice)
	s.handle("/api/onchain/", s.apiOnchain)
	s.handle("/api/network", s.apiNetwork)
	s.handle("/api/blocks", s.apiBlocks)
	s.handle("/api/rainbow", s.apiRainbow)
	s.handle("/api/nvt", s.apiNVT)
	s.handle("/api/orderbook", s.apiOrderbook)
	s.handle("/api/venue", s.apiVenue)
	s.handle("/api/refresh", s.apiRefresh)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) handle(path string, h http.HandlerFunc) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
	})
}

func (s *HTTPServer) serveIndex(w http.ResponseWriter, r *http.Request) {
	b, err := os.ReadFile(filepath.Join(s.webDir, "index.html"))
	if err != nil {
		http.Error(w, "index missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func (s *HTTPServer) serveAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(filepath.Join(s.webDir, name))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

func (s *HTTPServer) apiHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":          true,
		"reachable":   s.st.Reachable(),
		"lastRefresh": s.st.LastRefresh().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) apiConfig(w http.ResponseWriter, r *http.Request) {
	venue, pair := s.st.Book()
	writeJSON(w, map[string]any{
		"refreshSeconds": s.cfg.RefreshSeconds,
		"depthRows":      s.st.DepthRows(),
		"venue":          venue,
		"pair":           pair,
		"ttl": map[string]int{
			"orderBookSeconds": s.cfg.TTL.OrderBookSeconds,
			"priceSeconds":     s.cfg.TTL.PriceSeconds,
			"chartSeconds":     s.cfg.TTL.ChartSeconds,
			"historySeconds":   s.cfg.TTL.HistorySeconds,
		},
	})
}

func (s *HTTPServer) apiPrice(w http.ResponseWriter, r *http.Request) {
	p, err := s.mkt.Price(r.Context())
	if err != nil {
		s.unavailable(w, "price", err)
		return
	}
	writeJSON(w, p)
}

func (s *HTTPServer) apiOnchain(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/onchain/")
	var (
		pts []market.SeriesPoint
		err error
	)
	switch name {
	case "txvalue":
		pts, err = s.mkt.TxValueUSD(r.Context())
	case "txcount":
		pts, err = s.mkt.TxCount(r.Context())
	case "hashrate":
		pts, err = s.mkt.Hashrate(r.Context())
	default:
		http.Error(w, "unknown series", http.StatusNotFound)
		return
	}
	if err != nil {
		s.unavailable(w, name, err)
		return
	}
	writeJSON(w, map[string]any{"series": name, "points": pts})
}

func (s *HTTPServer) apiNetwork(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{}
	if h, err := s.mkt.BlockHeight(r.Context()); err == nil {
		out["height"] = h
	}
	if mp, err := s.mkt.Mempool(r.Context()); err == nil {
		out["mempool"] = mp
	}
	if len(out) == 0 {
		s.unavailable(w, "network", nil)
		return
	}
	writeJSON(w, out)
}

func (s *HTTPServer) apiBlocks(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	blocks, err := s.mkt.LatestBlocks(r.Context(), limit)
	if err != nil {
		s.unavailable(w, "blocks", err)
		return
	}
	writeJSON(w, map[string]any{"blocks": blocks})
}

func (s *HTTPServer) apiRainbow(w http.ResponseWriter, r *http.Request) {
	prices, err := s.mkt.MarketPriceAll(r.Context())
	if err != nil {
		s.unavailable(w, "rainbow", err)
		return
	}
	bands := valuation.RainbowSeries(prices)
	out := map[string]any{
		"prices": prices,
		"bands":  bands,
	}
	if len(prices) > 0 {
		latest := prices[len(prices)-1]
		out["latestPrice"] = latest.Value
		if band, ok := valuation.Classify(latest.Value, bands); ok {
			out["latestBand"] = band.Name
		}
	}
	writeJSON(w, out)
}

func (s *HTTPServer) apiNVT(w http.ResponseWriter, r *http.Request) {
	p, err := s.mkt.Price(r.Context())
	if err != nil {
		s.unavailable(w, "nvt", err)
		return
	}
	tx, err := s.mkt.TxValueUSD(r.Context())
	if err != nil {
		s.unavailable(w, "nvt", err)
		return
	}
	writeJSON(w, map[string]any{"points": valuation.NVTSeries(p.MarketCapUSD, tx)})
}

func (s *HTTPServer) apiOrderbook(w http.ResponseWriter, r *http.Request) {
	venueStr := r.URL.Query().Get("venue")
	if venueStr == "" {
		venueStr, _ = s.st.Book()
	}
	venue, err := market.ParseVenue(venueStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		pair = venue.DefaultPair()
	}
	bk, err := s.mkt.OrderBook(r.Context(), venue, pair)
	if err != nil {
		s.unavailable(w, "orderbook", err)
		return
	}
	rows := s.st.DepthRows()
	out := map[string]any{
		"venue":       string(venue),
		"pair":        pair,
		"bids":        book.Top(bk.Bids, rows),
		"asks":        book.Top(bk.Asks, rows),
		"bidNotional": book.TotalNotional(bk.Bids),
		"askNotional": book.TotalNotional(bk.Asks),
	}
	if mid, ok := bk.Mid(); ok {
		out["mid"] = mid
	}
	if spread, ok := bk.Spread(); ok {
		out["spread"] = spread
	}
	writeJSON(w, out)
}

// POST /api/venue { "venue": "coinbase"|"kraken", "pair": "..." }
func (s *HTTPServer) apiVenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Venue string `json:"venue"`
		Pair  string `json:"pair"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	venue, err := market.ParseVenue(req.Venue)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pair := req.Pair
	if pair == "" {
		pair = venue.DefaultPair()
	}
	v, p := s.st.SetBook(string(venue), pair)
	s.BroadcastStatus()
	writeJSON(w, map[string]any{"ok": true, "venue": v, "pair": p})
}

// POST /api/refresh drops the cache so the next reads refetch upstream.
func (s *HTTPServer) apiRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	s.cache.Purge()
	writeJSON(w, map[string]any{"ok": true})
}

// unavailable maps an upstream failure onto the inline notice the UI shows
// for that panel.
func (s *HTTPServer) unavailable(w http.ResponseWriter, panel string, err error) {
	msg := panel + " currently unavailable (rate limit or upstream outage); retry shortly"
	if err != nil {
		s.log.Warn("panel unavailable", slog.String("panel", panel), slog.String("err", err.Error()))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
