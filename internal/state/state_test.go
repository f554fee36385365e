package state

import (
	"testing"
	"time"
)

func TestSetBookCanonicalizes(t *testing.T) {
	s := New("coinbase", "btc-usd", 20)
	v, p := s.Book()
	if v != "coinbase" || p != "BTC-USD" {
		t.Fatalf("defaults got %s/%s", v, p)
	}
	v, p = s.SetBook(" Kraken ", " xbtusd ")
	if v != "kraken" || p != "XBTUSD" {
		t.Fatalf("set got %s/%s", v, p)
	}
}

func TestSetBookKeepsFieldsOnEmpty(t *testing.T) {
	s := New("coinbase", "BTC-USD", 20)
	v, p := s.SetBook("", "BTC-EUR")
	if v != "coinbase" || p != "BTC-EUR" {
		t.Fatalf("got %s/%s", v, p)
	}
	v, p = s.SetBook("kraken", "")
	if v != "kraken" || p != "BTC-EUR" {
		t.Fatalf("got %s/%s", v, p)
	}
}

func TestDepthRowsFloor(t *testing.T) {
	s := New("coinbase", "BTC-USD", 0)
	if s.DepthRows() != 20 {
		t.Fatalf("default depth got %d want 20", s.DepthRows())
	}
	s.SetDepthRows(-3)
	if s.DepthRows() != 1 {
		t.Fatalf("floor got %d want 1", s.DepthRows())
	}
}

func TestRefreshTracking(t *testing.T) {
	s := New("coinbase", "BTC-USD", 20)
	if !s.LastRefresh().IsZero() {
		t.Fatalf("last refresh must start zero")
	}
	now := time.Now()
	s.MarkRefreshed(now)
	if !s.LastRefresh().Equal(now) {
		t.Fatalf("last refresh got %v want %v", s.LastRefresh(), now)
	}
	s.SetReachable(true)
	if !s.Reachable() {
		t.Fatalf("reachable flag lost")
	}
}
