// booksnap fetches one venue's order book and prints the normalized ladder.
//
//	go run ./cmd/booksnap -venue kraken -pair XBTUSD -rows 15
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"btc-command-center/internal/book"
	"btc-command-center/internal/cache"
	"btc-command-center/internal/fetch"
	"btc-command-center/internal/market"
)

func main() {
	venueFlag := flag.String("venue", "coinbase", "order book venue (coinbase|kraken)")
	pairFlag := flag.String("pair", "", "product pair (defaults to the venue's BTC/USD spelling)")
	rowsFlag := flag.Int("rows", 20, "ladder rows to print per side")
	flag.Parse()

	venue, err := market.ParseVenue(*venueFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	mkt := market.NewClient(market.DefaultConfig(), fetch.NewClient(15*time.Second, nil), cache.New())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	bk, err := mkt.OrderBook(ctx, venue, *pairFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch order book: %v\n", err)
		os.Exit(1)
	}

	printSide("ASKS (best first)", book.Top(bk.Asks, *rowsFlag))
	fmt.Println()
	printSide("BIDS (best first)", book.Top(bk.Bids, *rowsFlag))

	if mid, ok := bk.Mid(); ok {
		spread, _ := bk.Spread()
		fmt.Printf("\nmid %s  spread %s\n", mid.StringFixed(2), spread.StringFixed(2))
	}
	fmt.Printf("bid notional %s  ask notional %s\n",
		book.TotalNotional(bk.Bids).StringFixed(0),
		book.TotalNotional(bk.Asks).StringFixed(0))
}

func printSide(title string, levels []book.Level) {
	fmt.Println(title)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "price\tqty\tnotional\tcum qty\tcum notional\t")
	for _, l := range levels {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			l.Price.StringFixed(2),
			l.Quantity.StringFixed(4),
			l.Notional.StringFixed(0),
			l.CumQuantity.StringFixed(4),
			l.CumNotional.StringFixed(0),
		)
	}
	_ = w.Flush()
}
